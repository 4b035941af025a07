// Package index serves contextmap.ContextMaps through the effect runtime.
//
// The handler keeps one map per namespace. Payloads are partitioned by
// namespace, so a map is only ever touched by one worker goroutine and needs
// no lock, while different namespaces are served in parallel. Every
// insertion that changes a map is published on a change feed obtained with
// EffectSource.
//
// A log effect handler (package effects/log) must be registered in the
// context before WithEffectHandler is called; rejected insertions are
// reported through it.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/on-the-ground/contextmap/contextmap"
	"github.com/on-the-ground/contextmap/effects"
	effectmodel "github.com/on-the-ground/contextmap/effects/internal/model"
	"github.com/on-the-ground/contextmap/effects/log"
	"github.com/on-the-ground/contextmap/shared/helper"
)

// ErrUnexpectedPayload is returned when a payload's type parameters do not
// match the ones the handler was registered with.
var ErrUnexpectedPayload = errors.New("unexpected index payload")

// WithEffectHandler registers the index handler. newMap builds the map of a
// namespace the first time something is inserted into it.
// The change feed holds config.BufferSize changes; changes arriving while it
// is full are dropped.
// The teardown function stops the workers and closes the change feed.
func WithEffectHandler[L comparable, C any, V comparable](
	ctx context.Context,
	config effects.EffectScopeConfig,
	newMap func(namespace string) *contextmap.ContextMap[L, C, V],
) (context.Context, func() context.Context) {
	config = effects.NewEffectScopeConfig(config.BufferSize, config.NumWorkers)
	sink := make(chan Change[L, C, V], config.BufferSize)
	h := &indexHandler[L, C, V]{
		maps:   &sync.Map{},
		newMap: newMap,
		sink:   sink,
	}
	return effects.WithResumablePartitionableEffectHandler(
		ctx,
		config,
		effectmodel.EffectIndex,
		h.handle,
		func() {
			close(sink)
		},
	)
}

func EffectInsert[L comparable, C any, V comparable](
	ctx context.Context,
	namespace string,
	at C,
	link L,
	value V,
) (contextmap.Outcome, error) {
	return helper.GetTypedValueOf[contextmap.Outcome](func() (any, error) {
		return effect(ctx, Insert[L, C, V]{
			Namespace: namespace,
			Context:   at,
			Link:      link,
			Value:     value,
		})
	})
}

func EffectQuery[L comparable, C any, V comparable](
	ctx context.Context,
	namespace string,
	at C,
	link L,
) (contextmap.Record[C, L, V], bool, error) {
	res, err := helper.GetTypedValueOf[Lookup[contextmap.Record[C, L, V]]](func() (any, error) {
		return effect(ctx, Query[L, C]{Namespace: namespace, Context: at, Link: link})
	})
	return res.Value, res.Found, err
}

func EffectLiveValue[L comparable, V comparable](
	ctx context.Context,
	namespace string,
	link L,
) (V, bool, error) {
	res, err := helper.GetTypedValueOf[Lookup[V]](func() (any, error) {
		return effect(ctx, LiveValue[L]{Namespace: namespace, Link: link})
	})
	return res.Value, res.Found, err
}

func EffectLiveLink[L comparable, V comparable](
	ctx context.Context,
	namespace string,
	value V,
) (L, bool, error) {
	res, err := helper.GetTypedValueOf[Lookup[L]](func() (any, error) {
		return effect(ctx, LiveLink[V]{Namespace: namespace, Value: value})
	})
	return res.Value, res.Found, err
}

func EffectHistory[L comparable, C any, V comparable](
	ctx context.Context,
	namespace string,
	link L,
) ([]contextmap.Record[C, L, V], error) {
	return helper.GetTypedValueOf[[]contextmap.Record[C, L, V]](func() (any, error) {
		return effect(ctx, History[L]{Namespace: namespace, Link: link})
	})
}

func EffectSnapshot[L comparable, C any, V comparable](
	ctx context.Context,
	namespace string,
	at C,
) (map[L]V, error) {
	return helper.GetTypedValueOf[map[L]V](func() (any, error) {
		return effect(ctx, Snapshot[C]{Namespace: namespace, Context: at})
	})
}

// EffectSource returns the change feed. It is closed by the handler's teardown.
func EffectSource[L comparable, C any, V comparable](ctx context.Context) (<-chan Change[L, C, V], error) {
	return helper.GetTypedValueOf[<-chan Change[L, C, V]](func() (any, error) {
		return effect(ctx, Source{})
	})
}

// effect performs an index operation using the EffectIndex handler.
func effect(ctx context.Context, payload Payload) (any, error) {
	return effects.PerformResumableEffect[Payload, any](ctx, effectmodel.EffectIndex, payload)
}

// indexHandler owns the maps. A namespace's map is created and used by the
// worker its namespace hashes to, and by no other goroutine.
type indexHandler[L comparable, C any, V comparable] struct {
	maps   *sync.Map // namespace -> *contextmap.ContextMap[L, C, V]
	newMap func(namespace string) *contextmap.ContextMap[L, C, V]
	sink   chan Change[L, C, V]
}

func (h *indexHandler[L, C, V]) load(namespace string) (*contextmap.ContextMap[L, C, V], bool) {
	m, ok := h.maps.Load(namespace)
	if !ok {
		return nil, false
	}
	return m.(*contextmap.ContextMap[L, C, V]), true
}

func (h *indexHandler[L, C, V]) loadOrCreate(ctx context.Context, namespace string) *contextmap.ContextMap[L, C, V] {
	if m, ok := h.load(namespace); ok {
		return m
	}
	m := h.newMap(namespace)
	h.maps.Store(namespace, m)
	log.LogEff(ctx, log.LogDebug, "namespace created", map[string]interface{}{
		"namespace": namespace,
	})
	return m
}

func (h *indexHandler[L, C, V]) publish(ctx context.Context, change Change[L, C, V]) {
	select {
	case h.sink <- change:
	default:
		log.LogEff(ctx, log.LogWarn, "change feed is full, change dropped", map[string]interface{}{
			"namespace": change.Namespace,
			"outcome":   change.Outcome.String(),
			"link":      change.Link,
		})
	}
}

// handle routes the given payload to the map of its namespace.
func (h *indexHandler[L, C, V]) handle(ctx context.Context, payload Payload) (any, error) {
	switch payload := payload.(type) {

	case Insert[L, C, V]:
		m := h.loadOrCreate(ctx, payload.Namespace)
		outcome, err := m.Insert(payload.Context, payload.Link, payload.Value)
		if err != nil {
			log.LogEff(ctx, log.LogWarn, "insertion rejected", map[string]interface{}{
				"namespace": payload.Namespace,
				"context":   payload.Context,
				"link":      payload.Link,
				"value":     payload.Value,
				"err":       err,
			})
			return outcome, err
		}
		if outcome.Changed() {
			h.publish(ctx, Change[L, C, V]{
				Namespace: payload.Namespace,
				Outcome:   outcome,
				Context:   payload.Context,
				Link:      payload.Link,
				Value:     payload.Value,
				TimeSpan:  effects.Now(),
			})
		}
		return outcome, nil

	case Query[L, C]:
		var res Lookup[contextmap.Record[C, L, V]]
		if m, ok := h.load(payload.Namespace); ok {
			res.Value, res.Found = m.Query(payload.Context, payload.Link)
		}
		return res, nil

	case LiveValue[L]:
		var res Lookup[V]
		if m, ok := h.load(payload.Namespace); ok {
			res.Value, res.Found = m.LiveValue(payload.Link)
		}
		return res, nil

	case LiveLink[V]:
		var res Lookup[L]
		if m, ok := h.load(payload.Namespace); ok {
			res.Value, res.Found = m.LiveLink(payload.Value)
		}
		return res, nil

	case History[L]:
		var res []contextmap.Record[C, L, V]
		if m, ok := h.load(payload.Namespace); ok {
			res = m.History(payload.Link)
		}
		return res, nil

	case Snapshot[C]:
		if m, ok := h.load(payload.Namespace); ok {
			return m.Snapshot(payload.Context), nil
		}
		return map[L]V{}, nil

	case Source:
		return (<-chan Change[L, C, V])(h.sink), nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedPayload, payload)
	}
}
