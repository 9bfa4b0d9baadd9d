package featuresource_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/featuresource"
	"github.com/ELBIXishere/gridrouter/normalize"
)

func fixtureSet(n int) normalize.RawFeatureSet {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < n; i++ {
		f := geojson.NewPointFeature([]float64{0, 0})
		fc.AddFeature(f)
	}
	return normalize.RawFeatureSet{Poles: fc}
}

func TestCache_MissThenHit(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context, key featuresource.BBoxKey) (normalize.RawFeatureSet, error) {
		atomic.AddInt32(&calls, 1)
		return fixtureSet(3), nil
	}
	c := featuresource.NewCache(1<<20, fetch)
	key := featuresource.BBoxKey{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	_, err := c.Fetch(context.Background(), key)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), key)
	require.NoError(t, err)

	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	require.Equal(t, 1, c.Len())
}

func TestCache_ConcurrentFetchesCoalesce(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context, key featuresource.BBoxKey) (normalize.RawFeatureSet, error) {
		atomic.AddInt32(&calls, 1)
		return fixtureSet(1), nil
	}
	c := featuresource.NewCache(1<<20, fetch)
	key := featuresource.BBoxKey{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Fetch(context.Background(), key)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestCache_EvictsLRUWhenOverBudget(t *testing.T) {
	fetch := func(ctx context.Context, key featuresource.BBoxKey) (normalize.RawFeatureSet, error) {
		return fixtureSet(1), nil // 512 bytes estimated per key
	}
	c := featuresource.NewCache(600, fetch) // room for ~1 entry
	keyA := featuresource.BBoxKey{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	keyB := featuresource.BBoxKey{MinX: 10, MinY: 10, MaxX: 11, MaxY: 11}

	_, err := c.Fetch(context.Background(), keyA)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), keyB)
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
}

func TestCache_PropagatesFetchError(t *testing.T) {
	fetch := func(ctx context.Context, key featuresource.BBoxKey) (normalize.RawFeatureSet, error) {
		return normalize.RawFeatureSet{}, assertErr
	}
	c := featuresource.NewCache(1<<20, fetch)
	_, err := c.Fetch(context.Background(), featuresource.BBoxKey{})
	require.ErrorIs(t, err, assertErr)
}

var assertErr = errFixture("boom")

type errFixture string

func (e errFixture) Error() string { return string(e) }
