package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/contextmap/shared/helper"
	"github.com/stretchr/testify/assert"
)

func TestGetTypedValueOf(t *testing.T) {
	v, err := helper.GetTypedValueOf[int](func() (any, error) { return 7, nil })
	assert.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = helper.GetTypedValueOf[string](func() (any, error) { return 7, nil })
	assert.ErrorContains(t, err, "unexpected type: int")

	errBoom := errors.New("boom")
	_, err = helper.GetTypedValueOf[int](func() (any, error) { return nil, errBoom })
	assert.ErrorIs(t, err, errBoom)
}

func TestMustGetTypedValue_Panics(t *testing.T) {
	assert.Equal(t, "ok", helper.MustGetTypedValue[string](func() (any, error) { return "ok", nil }))
	assert.Panics(t, func() {
		helper.MustGetTypedValue[string](func() (any, error) { return 1, nil })
	})
}
