package effects

import (
	"context"

	"github.com/on-the-ground/contextmap/effects/internal/handlers"
	effectmodel "github.com/on-the-ground/contextmap/effects/internal/model"
	"github.com/on-the-ground/contextmap/shared/helper"
	"go.uber.org/zap"
)

// WithResumablePartitionableEffectHandler registers a resumable effect handler for a given effect enum.
//
// Payloads are dispatched by the hash of PartitionKey(), so payloads sharing a key
// are handled one at a time, in order, by the same worker. This is what lets a
// handler own per-key state without locks.
//
// Usage:
//
//	ctx, end := WithResumablePartitionableEffectHandler(ctx, config, MyEffectEnum, handleFn)
//	defer end()
func WithResumablePartitionableEffectHandler[P effectmodel.Partitionable, R any](
	ctx context.Context,
	config EffectScopeConfig,
	enum effectmodel.EffectEnum,
	handleFn func(context.Context, P) (R, error),
	teardown ...func(),
) (context.Context, func() context.Context) {
	config = NewEffectScopeConfig(config.BufferSize, config.NumWorkers)
	handler := handlers.NewPartitionableResumableHandler(ctx, config, handleFn, normalizeTeardown(teardown))
	return register(ctx, enum, handler.EffectId, "resumable", handler.Close, handler)
}

// WithResumableEffectHandler registers a resumable effect handler served by a single worker.
func WithResumableEffectHandler[P any, R any](
	ctx context.Context,
	bufferSize int,
	enum effectmodel.EffectEnum,
	handleFn func(context.Context, P) (R, error),
	teardown ...func(),
) (context.Context, func() context.Context) {
	handler := handlers.NewResumableHandler(ctx, bufferSize, handleFn, normalizeTeardown(teardown))
	return register(ctx, enum, handler.EffectId, "resumable", handler.Close, handler)
}

// PerformResumableEffect sends a payload to the resumable effect handler and waits for the result.
//
// Panics if no handler is registered for the given effect enum.
func PerformResumableEffect[P any, R any](
	ctx context.Context,
	enum effectmodel.EffectEnum,
	payload P,
) (R, error) {
	handler := helper.MustGetTypedValue[handlers.ResumableHandler[P, R]](
		func() (any, error) {
			return getHandler(ctx, enum)
		},
	)
	return handler.PerformEffect(ctx, payload)
}

// WithFireAndForgetEffectHandler registers a fire-and-forget effect handler for a given effect enum.
//
// Suitable for one-shot effects like logging or publishing.
func WithFireAndForgetEffectHandler[P any](
	ctx context.Context,
	bufferSize int,
	enum effectmodel.EffectEnum,
	handleFn func(context.Context, P),
	teardown ...func(),
) (context.Context, func() context.Context) {
	handler := handlers.NewFireAndForgetHandler(ctx, bufferSize, handleFn, normalizeTeardown(teardown))
	return register(ctx, enum, handler.EffectId, "fire/forget", handler.Close, handler)
}

// FireAndForgetEffect queues the payload for the handler of enum and returns at once.
//
// Panics if no handler is registered for the given enum.
func FireAndForgetEffect[P any](
	ctx context.Context,
	enum effectmodel.EffectEnum,
	payload P,
) {
	handler := helper.MustGetTypedValue[handlers.FireAndForgetHandler[P]](
		func() (any, error) {
			return getHandler(ctx, enum)
		},
	)
	handler.FireAndForgetEffect(ctx, payload)
}

func register(
	ctx context.Context,
	enum effectmodel.EffectEnum,
	effectId, kind string,
	closeFn func(),
	handler any,
) (context.Context, func() context.Context) {
	logger := zap.L().Sugar()
	ctxWith := context.WithValue(ctx, enum, handler)
	logger.Debugf("created %s effect handler: effectId: %v, enum: %v", kind, effectId, enum)

	return ctxWith, func() context.Context {
		closeFn()
		logger.Debugf("closed %s effect handler: effectId: %v, enum: %v", kind, effectId, enum)
		return ctx
	}
}

// normalizeTeardown flattens optional teardown functions into a single callable.
//
// Accepts either 0 or 1 teardown functions. Panics if more than one is passed.
func normalizeTeardown(teardown []func()) func() {
	switch len(teardown) {
	case 1:
		return teardown[0]
	case 0:
		return func() {}
	default:
		panic("normalizeTeardown: only one or zero teardown functions allowed")
	}
}
