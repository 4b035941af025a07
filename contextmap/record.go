package contextmap

import "fmt"

// Record is one fact of a registry: at Context, Link held Value, or held
// nothing when the record is null. Records are immutable.
type Record[C, L, V any] struct {
	context C
	link    L
	value   V
	null    bool
}

func someRecord[C, L, V any](context C, link L, value V) Record[C, L, V] {
	return Record[C, L, V]{context: context, link: link, value: value}
}

func nullRecord[C, L, V any](context C, link L) Record[C, L, V] {
	return Record[C, L, V]{context: context, link: link, null: true}
}

func (r Record[C, L, V]) Context() C { return r.context }
func (r Record[C, L, V]) Link() L    { return r.link }

// Value returns the value of the record and false for a null record.
func (r Record[C, L, V]) Value() (V, bool) {
	if r.null {
		var zero V
		return zero, false
	}
	return r.value, true
}

func (r Record[C, L, V]) IsNull() bool { return r.null }

func (r Record[C, L, V]) String() string {
	if r.null {
		return fmt.Sprintf("Record { <none> @ %v }", r.context)
	}
	return fmt.Sprintf("Record { %v @ %v }", r.value, r.context)
}
