package handlers

import (
	"context"

	effectmodel "github.com/on-the-ground/contextmap/effects/internal/model"
)

func NewFireAndForgetHandler[P any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, P),
	teardown func(),
) FireAndForgetHandler[P] {
	return FireAndForgetHandler[P]{
		effectScope: newEffectScope(NewSingleQueue(ctx, bufferSize, handleFn), teardown),
	}
}

func NewPartitionableFireAndForgetHandler[P effectmodel.Partitionable](
	ctx context.Context,
	config effectmodel.EffectScopeConfig,
	handleFn func(context.Context, P),
	teardown func(),
) FireAndForgetHandler[P] {
	return FireAndForgetHandler[P]{
		effectScope: newEffectScope(
			NewPartitionedQueue(ctx, config.NumWorkers, config.BufferSize, handleFn),
			teardown,
		),
	}
}

type FireAndForgetHandler[P any] struct {
	*effectScope[P]
}

// FireAndForgetEffect queues payload. It drops the payload when ctx ends or
// the handler is closed before there is room in the queue.
func (ffh FireAndForgetHandler[P]) FireAndForgetEffect(ctx context.Context, payload P) {
	select {
	case <-ctx.Done():
	case <-ffh.Done():
	case ffh.dispatcher.GetChannelOf(payload) <- payload:
	}
}
