package contextmap

import (
	"cmp"

	"go.uber.org/zap"
)

// ContextMap relates links to values over contexts.
//
// links holds every registry ever created, under its link. values holds
// only live registries, under their current value. A registry appears in
// both maps exactly when its link and its value are associated.
type ContextMap[L comparable, C any, V comparable] struct {
	links   map[L]*Registry[C, L, V]
	values  map[V]*Registry[C, L, V]
	compare CompareFunc[C]
	logger  *zap.Logger
}

type options struct {
	logger *zap.Logger
}

// Option configures a ContextMap.
type Option func(*options)

// WithLogger makes the map log every insertion at debug level and every
// rejected insertion at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns an empty map for contexts with a natural order.
func New[L comparable, C cmp.Ordered, V comparable](opts ...Option) *ContextMap[L, C, V] {
	return NewFunc[L, C, V](cmp.Compare[C], opts...)
}

// NewFunc returns an empty map ordering contexts with compare,
// e.g. time.Time.Compare.
func NewFunc[L comparable, C any, V comparable](compare CompareFunc[C], opts ...Option) *ContextMap[L, C, V] {
	if compare == nil {
		panic("contextmap: nil compare func")
	}
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &ContextMap[L, C, V]{
		links:   make(map[L]*Registry[C, L, V]),
		values:  make(map[V]*Registry[C, L, V]),
		compare: compare,
		logger:  o.logger,
	}
}

// Insert associates link with value from context on.
//
// Both indices are checked before either is written. On error the map is
// unchanged and the error is an *InsertionError holding the rejection of
// each side; errors.Is matches it against ErrOutdatedContext,
// ErrOverwritingSome and ErrNullifyingSome.
func (m *ContextMap[L, C, V]) Insert(context C, link L, value V) (Outcome, error) {
	if reg, ok := m.links[link]; ok && m.values[value] == reg {
		m.logger.Debug("association unchanged",
			zap.Any("context", context), zap.Any("link", link), zap.Any("value", value))
		return NoChange, nil
	}

	linkCmd, linkErr := m.linkCommandOf(context, link)
	valueCmd, valueErr := m.valueCommandOf(context, value)
	if err := newInsertionError(linkErr, valueErr); err != nil {
		m.logger.Warn("insertion rejected",
			zap.Any("context", context), zap.Any("link", link), zap.Any("value", value), zap.Error(err))
		return NoChange, err
	}

	target := m.applyLink(linkCmd, context, link, value)
	m.applyValue(valueCmd, context, value, target)

	outcome := linkCmd.outcome
	if valueCmd.nullify != nil {
		outcome = NullifyAndRepoint
	}
	m.logger.Debug("association inserted",
		zap.Stringer("outcome", outcome),
		zap.Any("context", context), zap.Any("link", link), zap.Any("value", value))
	return outcome, nil
}

// Query returns the record of link in effect at context.
func (m *ContextMap[L, C, V]) Query(context C, link L) (Record[C, L, V], bool) {
	reg, ok := m.links[link]
	if !ok {
		return Record[C, L, V]{}, false
	}
	return reg.Query(context)
}

// LiveValue returns the value link currently holds.
func (m *ContextMap[L, C, V]) LiveValue(link L) (V, bool) {
	reg, ok := m.links[link]
	if !ok {
		var zero V
		return zero, false
	}
	return reg.CurrentValue()
}

// LiveLink returns the link currently holding value.
func (m *ContextMap[L, C, V]) LiveLink(value V) (L, bool) {
	reg, ok := m.values[value]
	if !ok {
		var zero L
		return zero, false
	}
	return reg.CurrentLink(), true
}

// History returns every record of link, oldest first, or nil for an
// unknown link.
func (m *ContextMap[L, C, V]) History(link L) []Record[C, L, V] {
	reg, ok := m.links[link]
	if !ok {
		return nil
	}
	return reg.History()
}

// Snapshot returns the association as it was at context.
func (m *ContextMap[L, C, V]) Snapshot(context C) map[L]V {
	out := make(map[L]V)
	for link, reg := range m.links {
		rec, ok := reg.Query(context)
		if !ok {
			continue
		}
		if v, ok := rec.Value(); ok {
			out[link] = v
		}
	}
	return out
}

// Len is the number of links ever inserted.
func (m *ContextMap[L, C, V]) Len() int { return len(m.links) }

// LiveLen is the number of links currently holding a value.
func (m *ContextMap[L, C, V]) LiveLen() int { return len(m.values) }
