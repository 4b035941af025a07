package contextmap

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrOutdatedContext is returned when the inserted context precedes the
	// latest record of the link's or the value's registry.
	ErrOutdatedContext = errors.New("outdated context")

	// ErrOverwritingSome is returned when the link's latest record has a
	// value and the inserted context equals its context.
	ErrOverwritingSome = errors.New("overwriting a record that has a value")

	// ErrNullifyingSome is returned when the value is held by another link
	// since the inserted context, so taking it would erase that record.
	ErrNullifyingSome = errors.New("nullifying a record at its own context")
)

const insertionRule = "insertions are possible only when the most recent existing record " +
	"has an earlier context, or has the same context and no value"

// Side names the index a conflict was found in.
type Side int

const (
	LinkSide Side = iota
	ValueSide
)

func (s Side) String() string {
	if s == ValueSide {
		return "value"
	}
	return "link"
}

// ConflictError describes one rejected side of an insertion.
type ConflictError[C, L, V any] struct {
	Kind     error // one of the Err* sentinels
	Side     Side
	Existing Record[C, L, V]
	Entered  C
}

func (e *ConflictError[C, L, V]) Error() string {
	return fmt.Sprintf("%s side: %v: entered context %v, existing %v (%s)",
		e.Side, e.Kind, e.Entered, e.Existing, insertionRule)
}

func (e *ConflictError[C, L, V]) Unwrap() error {
	return e.Kind
}

// InsertionError is returned by Insert. Link and Value hold the rejection of
// each side as generated, nil for a side that was acceptable.
type InsertionError struct {
	Link  error
	Value error
}

func newInsertionError(link, value error) error {
	if link == nil && value == nil {
		return nil
	}
	return &InsertionError{Link: link, Value: value}
}

func (e *InsertionError) Error() string {
	return "contextmap: insertion rejected: " + multierr.Combine(e.Link, e.Value).Error()
}

func (e *InsertionError) Unwrap() []error {
	return multierr.Errors(multierr.Combine(e.Link, e.Value))
}
