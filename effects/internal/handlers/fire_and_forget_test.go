package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/on-the-ground/contextmap/effects/internal/handlers"
	effectmodel "github.com/on-the-ground/contextmap/effects/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireAndForgetHandler_BasicExecution(t *testing.T) {
	ctx := context.Background()
	done := make(chan string, 1)

	handler := handlers.NewFireAndForgetHandler(ctx, 10,
		func(_ context.Context, msg string) {
			done <- msg
		},
		func() {},
	)
	defer handler.Close()

	handler.FireAndForgetEffect(ctx, "hello")

	select {
	case got := <-done:
		assert.Equal(t, "hello", got)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}
}

func TestFireAndForgetHandler_DropsAfterClose(t *testing.T) {
	ctx := context.Background()
	var called atomic.Bool
	var tornDown atomic.Int32

	handler := handlers.NewFireAndForgetHandler(ctx, 10,
		func(context.Context, string) { called.Store(true) },
		func() { tornDown.Add(1) },
	)
	handler.Close()
	handler.Close()

	handler.FireAndForgetEffect(ctx, "should-not-run")
	time.Sleep(20 * time.Millisecond)

	assert.False(t, called.Load(), "handler ran after close")
	assert.Equal(t, int32(1), tornDown.Load(), "teardown must run once")
}

func TestFireAndForgetHandler_Partitioned(t *testing.T) {
	ctx := context.Background()
	got := make(chan namespaced, 4)

	handler := handlers.NewPartitionableFireAndForgetHandler(ctx,
		effectmodel.NewEffectScopeConfig(4, 2),
		func(_ context.Context, msg namespaced) { got <- msg },
		func() {},
	)
	defer handler.Close()

	handler.FireAndForgetEffect(ctx, namespaced{seq: 1, namespace: "a"})
	handler.FireAndForgetEffect(ctx, namespaced{seq: 2, namespace: "b"})

	seen := map[string]int{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-got:
			seen[msg.namespace] = msg.seq
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for handler")
		}
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
}

func TestResumableHandler_ReturnsResult(t *testing.T) {
	ctx := context.Background()
	errOdd := errors.New("odd")

	handler := handlers.NewResumableHandler(ctx, 1,
		func(_ context.Context, n int) (int, error) {
			if n%2 == 1 {
				return 0, errOdd
			}
			return n / 2, nil
		},
		func() {},
	)
	defer handler.Close()

	res, err := handler.PerformEffect(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, res)

	_, err = handler.PerformEffect(ctx, 3)
	assert.ErrorIs(t, err, errOdd)
}

func TestResumableHandler_ClosedHandler(t *testing.T) {
	ctx := context.Background()
	handler := handlers.NewResumableHandler(ctx, 1,
		func(_ context.Context, n int) (int, error) { return n, nil },
		func() {},
	)
	handler.Close()

	_, err := handler.PerformEffect(ctx, 1)
	assert.ErrorIs(t, err, effectmodel.ErrHandlerClosed)
}

func TestResumableHandler_CallerContextCancelled(t *testing.T) {
	block := make(chan struct{})
	handler := handlers.NewResumableHandler(context.Background(), 1,
		func(_ context.Context, n int) (int, error) {
			<-block
			return n, nil
		},
		func() {},
	)
	defer handler.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.PerformEffect(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResumableHandler_Partitioned(t *testing.T) {
	ctx := context.Background()

	handler := handlers.NewPartitionableResumableHandler(ctx,
		effectmodel.NewEffectScopeConfig(1, 4),
		func(_ context.Context, msg namespaced) (string, error) {
			return fmt.Sprintf("%s/%d", msg.namespace, msg.seq), nil
		},
		func() {},
	)
	defer handler.Close()

	for _, ns := range []string{"a", "b", "c"} {
		for i := 1; i <= 3; i++ {
			res, err := handler.PerformEffect(ctx, namespaced{seq: i, namespace: ns})
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("%s/%d", ns, i), res)
		}
	}
}
