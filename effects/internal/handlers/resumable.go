package handlers

import (
	"context"

	effectmodel "github.com/on-the-ground/contextmap/effects/internal/model"
)

func NewResumableHandler[P any, R any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, P) (R, error),
	teardown func(),
) ResumableHandler[P, R] {
	return ResumableHandler[P, R]{
		effectScope: newEffectScope(
			NewSingleQueue(ctx, bufferSize, resume(handleFn)),
			teardown,
		),
	}
}

func NewPartitionableResumableHandler[P effectmodel.Partitionable, R any](
	ctx context.Context,
	config effectmodel.EffectScopeConfig,
	handleFn func(context.Context, P) (R, error),
	teardown func(),
) ResumableHandler[P, R] {
	return ResumableHandler[P, R]{
		effectScope: newEffectScope(
			NewPartitionedQueue(ctx, config.NumWorkers, config.BufferSize, resume(handleFn)),
			teardown,
		),
	}
}

// resume adapts handleFn to answer on the message's resume channel.
func resume[P any, R any](
	handleFn func(context.Context, P) (R, error),
) func(context.Context, ResumableEffectMessage[P, R]) {
	return func(ctx context.Context, msg ResumableEffectMessage[P, R]) {
		// buffered, never blocks
		msg.ResumeCh <- ResumableResultFrom(handleFn(ctx, msg.Payload))
	}
}

type ResumableHandler[P any, R any] struct {
	*effectScope[ResumableEffectMessage[P, R]]
}

// PerformEffect sends payload to the handler and waits for its result.
// It gives up with ctx.Err() when ctx ends and with ErrHandlerClosed when
// the handler is closed first.
func (rh ResumableHandler[P, R]) PerformEffect(ctx context.Context, payload P) (R, error) {
	var zero R
	msg := ResumableEffectMessage[P, R]{
		Payload:  payload,
		ResumeCh: make(chan ResumableResult[R], 1),
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-rh.Done():
		return zero, effectmodel.ErrHandlerClosed
	case rh.dispatcher.GetChannelOf(msg) <- msg:
	}

	select {
	case res := <-msg.ResumeCh:
		return res.Value, res.Err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-rh.Done():
		// the worker may have answered right before stopping
		select {
		case res := <-msg.ResumeCh:
			return res.Value, res.Err
		default:
			return zero, effectmodel.ErrHandlerClosed
		}
	}
}

// ResumableResult represents the result of handled effects.
type ResumableResult[T any] struct {
	Value T
	Err   error
}

func ResumableResultFrom[R any](res R, err error) ResumableResult[R] {
	return ResumableResult[R]{Value: res, Err: err}
}

var _ effectmodel.Partitionable = ResumableEffectMessage[any, any]{}

type ResumableEffectMessage[P any, R any] struct {
	Payload  P
	ResumeCh chan ResumableResult[R]
}

func (rem ResumableEffectMessage[P, R]) PartitionKey() string {
	if p, ok := any(rem.Payload).(effectmodel.Partitionable); ok {
		return p.PartitionKey()
	}
	return ""
}
