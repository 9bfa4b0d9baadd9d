// Package featuresource implements spec §5's optional boundary cache: a
// bounding-box-keyed cache of raw feature fetches that sits in front of
// the S1 Feature Normalizer. It is explicitly out of scope for the core
// pipeline but respected at the boundary, so it lives in its own package
// with no dependency from normalize/orchestrate back into it — callers
// that want caching wrap their fetch function with Cache.Fetch; callers
// that don't can call their fetch function directly.
//
// The fetch client shape (fasthttp.Client, BeforeRequestFn hook,
// buildBaseRequest helper) is adapted from the teacher's client.go,
// generalized from "call the Valhalla routing API" to "call whatever
// raw-feature source the caller wires up" — the WFS-equivalent transport
// itself stays out of scope per spec §1.
package featuresource

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/go.geojson"
	"golang.org/x/sync/singleflight"

	"github.com/ELBIXishere/gridrouter/normalize"
)

// BBoxKey is the cache key for one bounding-box fetch, quantized by the
// caller before calling Fetch (the cache itself does no snapping).
type BBoxKey struct {
	MinX, MinY, MaxX, MaxY float64
}

// FetchFunc retrieves a raw feature set for one bbox, e.g. by calling a
// WFS-equivalent endpoint through Client. Cache never calls this
// concurrently for the same key (spec §5: "at-most-one in flight per
// key"); it may call it concurrently for different keys.
type FetchFunc func(ctx context.Context, key BBoxKey) (normalize.RawFeatureSet, error)

type entry struct {
	key     BBoxKey
	value   normalize.RawFeatureSet
	size    int64
	element *list.Element
}

// Cache is a bounding-box-keyed cache of raw feature fetches, per spec
// §5's "optional cache (out of scope for the core but respected at the
// boundary)". The core pipeline never mutates cached values; Cache hands
// back the same normalize.RawFeatureSet value to every caller that hits.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	entries   map[BBoxKey]*entry
	order     *list.List // front = most recently used
	sizeBytes int64
	maxBytes  int64

	group singleflight.Group
	fetch FetchFunc

	// sizeOf estimates the memory cost of one fetched feature set, for
	// the LRU budget. Defaults to sizeOfRawFeatureSet.
	sizeOf func(normalize.RawFeatureSet) int64
}

// NewCache returns a Cache that evicts by LRU once its estimated content
// size exceeds maxBytes, fetching misses through fetch.
func NewCache(maxBytes int64, fetch FetchFunc) *Cache {
	return &Cache{
		entries:  make(map[BBoxKey]*entry),
		order:    list.New(),
		maxBytes: maxBytes,
		fetch:    fetch,
		sizeOf:   sizeOfRawFeatureSet,
	}
}

// Fetch returns the cached value for key if present, otherwise calls the
// cache's FetchFunc exactly once even if multiple goroutines request the
// same key concurrently (spec §5 coalescing), and stores the result.
func (c *Cache) Fetch(ctx context.Context, key BBoxKey) (normalize.RawFeatureSet, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(cacheGroupKey(key), func() (interface{}, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}
		fetched, err := c.fetch(ctx, key)
		if err != nil {
			return normalize.RawFeatureSet{}, err
		}
		c.put(key, fetched)
		return fetched, nil
	})
	if err != nil {
		return normalize.RawFeatureSet{}, err
	}
	return v.(normalize.RawFeatureSet), nil
}

func (c *Cache) get(key BBoxKey) (normalize.RawFeatureSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return normalize.RawFeatureSet{}, false
	}
	c.order.MoveToFront(e.element)
	return e.value, true
}

func (c *Cache) put(key BBoxKey, value normalize.RawFeatureSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.sizeBytes -= existing.size
		c.order.Remove(existing.element)
		delete(c.entries, key)
	}

	size := c.sizeOf(value)
	e := &entry{key: key, value: value, size: size}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
	c.sizeBytes += size

	for c.sizeBytes > c.maxBytes && c.order.Len() > 0 {
		back := c.order.Back()
		oldest := back.Value.(*entry)
		c.order.Remove(back)
		delete(c.entries, oldest.key)
		c.sizeBytes -= oldest.size
	}
}

// Len reports how many bbox keys are currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheGroupKey(key BBoxKey) string {
	return fmt.Sprintf("%.4f:%.4f:%.4f:%.4f", key.MinX, key.MinY, key.MaxX, key.MaxY)
}

// sizeOfRawFeatureSet estimates the in-memory cost of a fetched feature
// set by counting features across every collection; it is a coarse
// proxy, not an exact byte count, which is all the LRU budget needs.
func sizeOfRawFeatureSet(v normalize.RawFeatureSet) int64 {
	const perFeature = 512 // rough average encoded-feature footprint
	count := featureCount(v.Poles) + featureCount(v.Lines) + featureCount(v.Transformers) +
		featureCount(v.Roads) + featureCount(v.Buildings) + featureCount(v.Railways) + featureCount(v.Rivers)
	return int64(count) * perFeature
}

func featureCount(fc *geojson.FeatureCollection) int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}
