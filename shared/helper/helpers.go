package helper

import (
	"fmt"
)

// GetTypedValueOf runs getFn and asserts its result to T.
// Returns an error if getFn fails or the result has another type.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, fmt.Errorf("failed to get value: %w", err)
	}

	val, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected type: %T", res)
	}

	return val, nil
}

// MustGetTypedValue is the panic-on-failure variant of GetTypedValueOf.
// Use when failure is a wiring bug, e.g. a handler that must be registered.
func MustGetTypedValue[T any](getFn func() (any, error)) T {
	res, err := GetTypedValueOf[T](getFn)
	if err != nil {
		panic(err)
	}
	return res
}
