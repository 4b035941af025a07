package effectmodel

import "errors"

type EffectEnum string

const (
	EffectLog   EffectEnum = "contextmap_effect_enum_log"
	EffectIndex EffectEnum = "contextmap_effect_enum_index"
)

var (
	ErrNoEffectHandler = errors.New("no effect handler registered for this effect")
	ErrHandlerClosed   = errors.New("effect handler is closed")
)

type EffectScopeConfig struct {
	BufferSize int // default: 1
	NumWorkers int // default: 1
}

// NewEffectScopeConfig replaces non-positive sizes with 1.
func NewEffectScopeConfig(bufferSize int, numWorkers int) EffectScopeConfig {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return EffectScopeConfig{
		BufferSize: bufferSize,
		NumWorkers: numWorkers,
	}
}

// Partitionable payloads with equal keys are handled by the same worker,
// in the order they were sent.
type Partitionable interface {
	PartitionKey() string
}
