package effects

import (
	"context"
	"fmt"

	effectmodel "github.com/on-the-ground/contextmap/effects/internal/model"
)

type (
	EffectEnum        = effectmodel.EffectEnum
	EffectScopeConfig = effectmodel.EffectScopeConfig
	Partitionable     = effectmodel.Partitionable
)

var (
	ErrNoEffectHandler = effectmodel.ErrNoEffectHandler
	ErrHandlerClosed   = effectmodel.ErrHandlerClosed
)

// NewEffectScopeConfig returns a config with non-positive sizes replaced by 1.
func NewEffectScopeConfig(bufferSize, numWorkers int) EffectScopeConfig {
	return effectmodel.NewEffectScopeConfig(bufferSize, numWorkers)
}

// getHandler checks whether a handler for the given EffectEnum is registered in the context.
// Returns an error if not found.
func getHandler(ctx context.Context, enum effectmodel.EffectEnum) (any, error) {
	raw := ctx.Value(enum)
	if raw == nil {
		return nil, fmt.Errorf("%w: %v", effectmodel.ErrNoEffectHandler, enum)
	}
	return raw, nil
}
