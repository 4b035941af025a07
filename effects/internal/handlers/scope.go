package handlers

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// effectScope ties a dispatcher to the teardown of the effect it serves.
// Close stops the workers before running teardown, so teardown never races
// a message still being handled.
type effectScope[T any] struct {
	EffectId   string
	dispatcher WorkerDispatcher[T]
	teardown   func()
	closeOnce  *sync.Once
}

func (es *effectScope[T]) Close() {
	es.closeOnce.Do(func() {
		es.dispatcher.Stop()
		es.teardown()
		zap.L().Debug("effect scope closed", zap.String("effectId", es.EffectId))
	})
}

func (es *effectScope[T]) Done() <-chan struct{} {
	return es.dispatcher.Done()
}

func newEffectScope[T any](
	dispatcher WorkerDispatcher[T],
	teardown func(),
) *effectScope[T] {
	return &effectScope[T]{
		EffectId:   uuid.New().String(),
		dispatcher: dispatcher,
		teardown:   teardown,
		closeOnce:  &sync.Once{},
	}
}
