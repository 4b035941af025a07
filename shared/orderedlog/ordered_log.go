package orderedlog

import (
	"errors"
	"iter"
	"sort"
)

var ErrOutOfOrder = errors.New("element precedes the last element of the log")

type CompareFunc[T any] func(a, b T) int

// Log is an append-only sequence kept in compare order.
// Elements comparing equal to the last element replace it, so the log
// behaves like an ordered map whose keys only ever grow.
type Log[T any] struct {
	data    []T
	compare CompareFunc[T]
}

func New[T any](cmp CompareFunc[T]) *Log[T] {
	return &Log[T]{
		data:    make([]T, 0, 1),
		compare: cmp,
	}
}

// Append adds val at the tail. It fails with ErrOutOfOrder when val sorts
// before the current tail and replaces the tail when they compare equal.
func (l *Log[T]) Append(val T) error {
	n := len(l.data)
	if n == 0 {
		l.data = append(l.data, val)
		return nil
	}
	switch c := l.compare(val, l.data[n-1]); {
	case c < 0:
		return ErrOutOfOrder
	case c == 0:
		l.data[n-1] = val
	default:
		l.data = append(l.data, val)
	}
	return nil
}

// Floor returns the greatest element not after probe.
func (l *Log[T]) Floor(probe T) (T, bool) {
	// first index strictly after probe
	idx := sort.Search(len(l.data), func(i int) bool {
		return l.compare(probe, l.data[i]) < 0
	})
	if idx == 0 {
		var zero T
		return zero, false
	}
	return l.data[idx-1], true
}

func (l *Log[T]) Last() (T, bool) {
	if len(l.data) == 0 {
		var zero T
		return zero, false
	}
	return l.data[len(l.data)-1], true
}

func (l *Log[T]) Len() int {
	return len(l.data)
}

// All iterates the log from oldest to newest.
func (l *Log[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range l.data {
			if !yield(i, v) {
				return
			}
		}
	}
}
