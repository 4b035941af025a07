package handlers

import (
	"context"
	"sync"

	effectmodel "github.com/on-the-ground/contextmap/effects/internal/model"
)

// WorkerDispatcher owns the worker goroutines of an effect scope and tells
// senders which worker queue a message belongs to.
type WorkerDispatcher[T any] interface {
	GetChannelOf(msg T) chan<- T
	// Done is closed once the workers are asked to stop.
	Done() <-chan struct{}
	// Stop cancels the workers and waits until none is running.
	Stop()
}

type workerPool[T any] struct {
	channels []chan T
	route    func(msg T, numChs int) int
	ctx      context.Context
	cancel   context.CancelFunc
	running  *sync.WaitGroup
}

func (wp workerPool[T]) GetChannelOf(msg T) chan<- T {
	return wp.channels[wp.route(msg, len(wp.channels))]
}

func (wp workerPool[T]) Done() <-chan struct{} {
	return wp.ctx.Done()
}

func (wp workerPool[T]) Stop() {
	wp.cancel()
	wp.running.Wait()
}

func startWorkers[T any](
	ctx context.Context,
	numWorkers, bufferSize int,
	route func(msg T, numChs int) int,
	handleFn func(context.Context, T),
) workerPool[T] {
	ctx, cancel := context.WithCancel(ctx)
	pool := workerPool[T]{
		channels: make([]chan T, numWorkers),
		route:    route,
		ctx:      ctx,
		cancel:   cancel,
		running:  &sync.WaitGroup{},
	}

	ready := sync.WaitGroup{}
	for i := range pool.channels {
		ch := make(chan T, bufferSize)
		pool.channels[i] = ch
		pool.running.Add(1)
		ready.Add(1)
		go func() {
			defer pool.running.Done()
			ready.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-ch:
					handleFn(ctx, msg)
				}
			}
		}()
	}
	ready.Wait()
	return pool
}

// --- single queue ---

// NewSingleQueue handles every message on one goroutine, in arrival order.
func NewSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	return startWorkers(ctx, 1, bufferSize, func(T, int) int { return 0 }, handleFn)
}

// --- partitioned queue ---

// NewPartitionedQueue spreads messages over numWorkers goroutines by the
// hash of their partition key.
func NewPartitionedQueue[T effectmodel.Partitionable](
	ctx context.Context,
	numWorkers, bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	return startWorkers(ctx, numWorkers, bufferSize, func(msg T, numChs int) int {
		return getIndexByHash(msg, numChs)
	}, handleFn)
}
