package contextmap

import (
	"fmt"

	"github.com/on-the-ground/contextmap/shared/orderedlog"
)

// CompareFunc orders contexts. It returns a negative number when a is
// earlier than b, zero when they are equal and a positive number otherwise.
type CompareFunc[C any] func(a, b C) int

// Registry is the version chain of one identity.
//
// A registry is reachable from at most two index entries: the link index
// under its link and, while its latest record has a value, the value index
// under that value. Writes through either entry are seen through the other.
type Registry[C, L, V any] struct {
	records *orderedlog.Log[Record[C, L, V]]
}

func newRegistry[C, L, V any](compare CompareFunc[C], context C, link L, value V) *Registry[C, L, V] {
	records := orderedlog.New(func(a, b Record[C, L, V]) int {
		return compare(a.context, b.context)
	})
	reg := &Registry[C, L, V]{records: records}
	reg.insert(someRecord(context, link, value))
	return reg
}

// insert appends rec, replacing the last record when both share a context.
// Callers check the context first; a regression here is a bug.
func (r *Registry[C, L, V]) insert(rec Record[C, L, V]) {
	if err := r.records.Append(rec); err != nil {
		last := r.Last()
		panic(fmt.Errorf("registry of %v: inserting %v after %v: %w", last.link, rec, last, err))
	}
}

// Query returns the record in effect at context, that is the record with
// the greatest context not after it. It returns false when context precedes
// the first record.
func (r *Registry[C, L, V]) Query(context C) (Record[C, L, V], bool) {
	return r.records.Floor(Record[C, L, V]{context: context})
}

// Last returns the most recent record.
func (r *Registry[C, L, V]) Last() Record[C, L, V] {
	last, ok := r.records.Last()
	if !ok {
		panic("contextmap: empty registry")
	}
	return last
}

func (r *Registry[C, L, V]) CurrentValue() (V, bool) {
	return r.Last().Value()
}

func (r *Registry[C, L, V]) CurrentLink() L {
	return r.Last().link
}

// History copies the chain, oldest first.
func (r *Registry[C, L, V]) History() []Record[C, L, V] {
	out := make([]Record[C, L, V], 0, r.records.Len())
	for _, rec := range r.records.All() {
		out = append(out, rec)
	}
	return out
}

func (r *Registry[C, L, V]) Len() int {
	return r.records.Len()
}
