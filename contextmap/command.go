package contextmap

// linkCommand is the planned effect of an insertion on the link index.
type linkCommand[C, L, V any] struct {
	outcome  Outcome            // NewLink, Update or Overwrite
	registry *Registry[C, L, V] // nil for NewLink

	// value the registry held before an Update; its value index entry
	// must go since the registry no longer carries it
	retired    V
	hasRetired bool
}

// valueCommand is the planned effect of an insertion on the value index.
// A nil nullify means the value is free and only needs to be indexed.
type valueCommand[C, L, V any] struct {
	nullify *Registry[C, L, V]
}

func (m *ContextMap[L, C, V]) linkCommandOf(context C, link L) (linkCommand[C, L, V], error) {
	reg, ok := m.links[link]
	if !ok {
		return linkCommand[C, L, V]{outcome: NewLink}, nil
	}

	last := reg.Last()
	switch c := m.compare(context, last.context); {
	case c < 0:
		return linkCommand[C, L, V]{}, m.conflict(ErrOutdatedContext, LinkSide, last, context)
	case c == 0:
		if !last.null {
			return linkCommand[C, L, V]{}, m.conflict(ErrOverwritingSome, LinkSide, last, context)
		}
		return linkCommand[C, L, V]{outcome: Overwrite, registry: reg}, nil
	default:
		cmd := linkCommand[C, L, V]{outcome: Update, registry: reg}
		cmd.retired, cmd.hasRetired = last.Value()
		return cmd, nil
	}
}

func (m *ContextMap[L, C, V]) valueCommandOf(context C, value V) (valueCommand[C, L, V], error) {
	reg, ok := m.values[value]
	if !ok {
		return valueCommand[C, L, V]{}, nil
	}

	// indexed registries always end with a record holding value
	last := reg.Last()
	switch c := m.compare(context, last.context); {
	case c < 0:
		return valueCommand[C, L, V]{}, m.conflict(ErrOutdatedContext, ValueSide, last, context)
	case c == 0:
		return valueCommand[C, L, V]{}, m.conflict(ErrNullifyingSome, ValueSide, last, context)
	default:
		return valueCommand[C, L, V]{nullify: reg}, nil
	}
}

func (m *ContextMap[L, C, V]) conflict(kind error, side Side, existing Record[C, L, V], entered C) error {
	return &ConflictError[C, L, V]{
		Kind:     kind,
		Side:     side,
		Existing: existing,
		Entered:  entered,
	}
}

// applyLink executes cmd and returns the registry now indexed under link.
func (m *ContextMap[L, C, V]) applyLink(cmd linkCommand[C, L, V], context C, link L, value V) *Registry[C, L, V] {
	switch cmd.outcome {
	case NewLink:
		reg := newRegistry(m.compare, context, link, value)
		m.links[link] = reg
		return reg
	case Update:
		if cmd.hasRetired && m.values[cmd.retired] == cmd.registry {
			delete(m.values, cmd.retired)
		}
		cmd.registry.insert(someRecord(context, link, value))
		return cmd.registry
	case Overwrite:
		cmd.registry.insert(someRecord(context, link, value))
		return cmd.registry
	default:
		panic("contextmap: unexpected link command " + cmd.outcome.String())
	}
}

// applyValue executes cmd, pointing value at target.
func (m *ContextMap[L, C, V]) applyValue(cmd valueCommand[C, L, V], context C, value V, target *Registry[C, L, V]) {
	if cmd.nullify != nil {
		cmd.nullify.insert(nullRecord[C, L, V](context, cmd.nullify.CurrentLink()))
	}
	m.values[value] = target
}
