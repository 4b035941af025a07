package index_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/contextmap/clock"
	"github.com/on-the-ground/contextmap/contextmap"
	"github.com/on-the-ground/contextmap/effects"
	"github.com/on-the-ground/contextmap/effects/index"
	"github.com/on-the-ground/contextmap/effects/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMap(string) *contextmap.ContextMap[string, int, int] {
	return contextmap.New[string, int, int]()
}

func withIndex(t *testing.T, config effects.EffectScopeConfig) (context.Context, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	ctx, endOfLog := log.WithZapEffectHandler(context.Background(), 16, zap.New(core))
	ctx, endOfIndex := index.WithEffectHandler(ctx, config, newMap)
	t.Cleanup(func() {
		endOfIndex()
		endOfLog()
	})
	return ctx, logs
}

func TestIndexEffect_ValueMovesToAnotherLink(t *testing.T) {
	ctx, _ := withIndex(t, effects.NewEffectScopeConfig(8, 2))
	const ns = "tenant-a"

	steps := []struct {
		at    int
		link  string
		value int
		want  contextmap.Outcome
	}{
		{0, "a", 10, contextmap.NewLink},
		{1, "b", 20, contextmap.NewLink},
		{2, "b", 10, contextmap.NullifyAndRepoint},
	}
	for _, s := range steps {
		outcome, err := index.EffectInsert(ctx, ns, s.at, s.link, s.value)
		require.NoError(t, err)
		assert.Equal(t, s.want, outcome)
	}

	rec, found, err := index.EffectQuery[string, int, int](ctx, ns, 2, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.IsNull())

	rec, found, err = index.EffectQuery[string, int, int](ctx, ns, 1, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Record { 10 @ 0 }", rec.String())

	owner, found, err := index.EffectLiveLink[string, int](ctx, ns, 10)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "b", owner)

	value, found, err := index.EffectLiveValue[string, int](ctx, ns, "b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 10, value)

	history, err := index.EffectHistory[string, int, int](ctx, ns, "b")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	snapshot, err := index.EffectSnapshot[string, int, int](ctx, ns, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 10, "b": 20}, snapshot)
}

func TestIndexEffect_NamespacesAreIndependent(t *testing.T) {
	ctx, _ := withIndex(t, effects.NewEffectScopeConfig(8, 4))

	_, err := index.EffectInsert(ctx, "tenant-a", 5, "a", 1)
	require.NoError(t, err)

	// same value, earlier context: fine in another namespace
	outcome, err := index.EffectInsert(ctx, "tenant-b", 0, "b", 1)
	require.NoError(t, err)
	assert.Equal(t, contextmap.NewLink, outcome)

	owner, _, err := index.EffectLiveLink[string, int](ctx, "tenant-a", 1)
	require.NoError(t, err)
	assert.Equal(t, "a", owner)
	owner, _, err = index.EffectLiveLink[string, int](ctx, "tenant-b", 1)
	require.NoError(t, err)
	assert.Equal(t, "b", owner)
}

func TestIndexEffect_UnknownNamespace(t *testing.T) {
	ctx, _ := withIndex(t, effects.NewEffectScopeConfig(1, 1))

	_, found, err := index.EffectQuery[string, int, int](ctx, "nobody", 0, "a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = index.EffectLiveValue[string, int](ctx, "nobody", "a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = index.EffectLiveLink[string, int](ctx, "nobody", 1)
	require.NoError(t, err)
	assert.False(t, found)

	history, err := index.EffectHistory[string, int, int](ctx, "nobody", "a")
	require.NoError(t, err)
	assert.Nil(t, history)

	snapshot, err := index.EffectSnapshot[string, int, int](ctx, "nobody", 0)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestIndexEffect_RejectionIsReturnedAndLogged(t *testing.T) {
	ctx, logs := withIndex(t, effects.NewEffectScopeConfig(4, 1))
	const ns = "tenant-a"

	_, err := index.EffectInsert(ctx, ns, 5, "a", 1)
	require.NoError(t, err)

	_, err = index.EffectInsert(ctx, ns, 4, "a", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, contextmap.ErrOutdatedContext)
	var insErr *contextmap.InsertionError
	assert.ErrorAs(t, err, &insErr)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("insertion rejected").Len() == 1
	}, time.Second, 5*time.Millisecond)
	entry := logs.FilterMessage("insertion rejected").All()[0]
	assert.Equal(t, ns, entry.ContextMap()["namespace"])

	value, _, err := index.EffectLiveValue[string, int](ctx, ns, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, value, "rejected insert must not change the map")
}

func TestIndexEffect_ChangeFeed(t *testing.T) {
	ctx, _ := withIndex(t, effects.NewEffectScopeConfig(8, 2))
	const ns = "tenant-a"

	changes, err := index.EffectSource[string, int, int](ctx)
	require.NoError(t, err)

	_, err = index.EffectInsert(ctx, ns, 0, "a", 10)
	require.NoError(t, err)
	_, err = index.EffectInsert(ctx, ns, 0, "a", 10) // no change, not published
	require.NoError(t, err)
	_, err = index.EffectInsert(ctx, ns, 1, "b", 10)
	require.NoError(t, err)

	var got []index.Change[string, int, int]
	for len(got) < 2 {
		select {
		case c := <-changes:
			got = append(got, c)
		case <-time.After(time.Second):
			t.Fatalf("only %d changes published", len(got))
		}
	}

	assert.Equal(t, contextmap.NewLink, got[0].Outcome)
	assert.Equal(t, "a", got[0].Link)
	assert.Equal(t, contextmap.NullifyAndRepoint, got[1].Outcome)
	assert.Equal(t, "b", got[1].Link)
	assert.Equal(t, 1, got[1].Context)
	assert.Equal(t, ns, got[1].Namespace)
	assert.False(t, got[1].Start().IsZero(), "change must carry the time it was observed")

	select {
	case c := <-changes:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestIndexEffect_ConcurrentWritersOneNamespace(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	ctx, endOfLog := log.WithZapEffectHandler(context.Background(), 64, zap.New(core))
	defer endOfLog()

	c := clock.New()
	ctx, endOfIndex := index.WithEffectHandler(ctx, effects.NewEffectScopeConfig(16, 4),
		func(string) *contextmap.ContextMap[string, int64, string] {
			return contextmap.New[string, int64, string]()
		},
	)
	defer endOfIndex()

	const writers = 8
	const perWriter = 20
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			link := fmt.Sprintf("link-%d", w)
			for i := 0; i < perWriter; i++ {
				value := fmt.Sprintf("value-%d-%d", w, i)
				_, err := index.EffectInsert(ctx, "shared", c.Next(), link, value)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for w := 0; w < writers; w++ {
		link := fmt.Sprintf("link-%d", w)
		value, found, err := index.EffectLiveValue[string, string](ctx, "shared", link)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, fmt.Sprintf("value-%d-%d", w, perWriter-1), value)

		owner, found, err := index.EffectLiveLink[string, string](ctx, "shared", value)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, link, owner)

		history, err := index.EffectHistory[string, int64, string](ctx, "shared", link)
		require.NoError(t, err)
		assert.Len(t, history, perWriter)
	}
}

func TestIndexEffect_MismatchedTypes(t *testing.T) {
	ctx, _ := withIndex(t, effects.NewEffectScopeConfig(1, 1))

	_, err := index.EffectInsert(ctx, "tenant-a", 0, "a", "not-an-int")
	assert.ErrorIs(t, err, index.ErrUnexpectedPayload)
}

func TestIndexEffect_AfterTeardown(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	ctx, endOfLog := log.WithZapEffectHandler(context.Background(), 1, zap.New(core))
	defer endOfLog()
	ctx, endOfIndex := index.WithEffectHandler(ctx, effects.NewEffectScopeConfig(1, 1), newMap)

	changes, err := index.EffectSource[string, int, int](ctx)
	require.NoError(t, err)
	endOfIndex()

	_, open := <-changes
	assert.False(t, open, "teardown closes the change feed")

	_, err = index.EffectInsert(ctx, "tenant-a", 0, "a", 1)
	assert.ErrorIs(t, err, effects.ErrHandlerClosed)
}
