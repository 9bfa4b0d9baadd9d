// Package spatialindex implements spec §4.2's read-only spatial index:
// uniform-grid bucketing over lines, roads, buildings and poles, built
// once per request and immutable for its lifetime. The spec explicitly
// permits "an R-tree or an equivalent grid"; a grid is the honest,
// corpus-grounded choice here since no example repo in the retrieval pack
// imports an R-tree library.
package spatialindex

import (
	"math"
	"sort"

	"github.com/ELBIXishere/gridrouter/geo"
)

// BBox is an axis-aligned bounding rectangle.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Union returns the smallest BBox containing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Intersects reports whether b and o overlap (touching edges count).
func (b BBox) Intersects(o BBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// FromPoints returns the bounding box of pts. Panics on an empty slice.
func FromPoints(pts []geo.Point) BBox {
	b := BBox{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// cellSize is the uniform grid's bucket edge length. Chosen relative to
// MAX_ATTACH/MAX_DISTANCE so that a radius query over a handful of
// candidate poles only ever touches a small neighbourhood of cells.
const cellSize = 50.0

type cellKey struct{ cx, cy int64 }

func cellOf(p geo.Point) cellKey {
	return cellKey{cx: int64(math.Floor(p.X / cellSize)), cy: int64(math.Floor(p.Y / cellSize))}
}

// Entry is one indexed item: its bounding box, a representative point
// (used for nearest-queries) and an opaque id pointing back to the
// caller's own collection.
type Entry struct {
	ID   string
	BBox BBox
	Pos  geo.Point
}

// Index is an immutable, read-only grid index over one collection of
// entries. Build once per request; QueryBBox/Nearest never mutate it.
type Index struct {
	entries map[string]Entry
	buckets map[cellKey][]string
}

// Build constructs an Index over entries. Complexity is linear in the
// number of entries and the number of grid cells each one's bbox spans.
func Build(entries []Entry) *Index {
	idx := &Index{
		entries: make(map[string]Entry, len(entries)),
		buckets: make(map[cellKey][]string),
	}
	for _, e := range entries {
		idx.entries[e.ID] = e
		minCell := cellOf(geo.Point{X: e.BBox.MinX, Y: e.BBox.MinY})
		maxCell := cellOf(geo.Point{X: e.BBox.MaxX, Y: e.BBox.MaxY})
		for cx := minCell.cx; cx <= maxCell.cx; cx++ {
			for cy := minCell.cy; cy <= maxCell.cy; cy++ {
				k := cellKey{cx, cy}
				idx.buckets[k] = append(idx.buckets[k], e.ID)
			}
		}
	}
	return idx
}

// QueryBBox returns every entry whose bbox intersects rect. The spec does
// not mandate an order; results are deduplicated (an entry spanning
// multiple cells is returned once).
func (idx *Index) QueryBBox(rect BBox) []Entry {
	seen := make(map[string]bool)
	var out []Entry
	minCell := cellOf(geo.Point{X: rect.MinX, Y: rect.MinY})
	maxCell := cellOf(geo.Point{X: rect.MaxX, Y: rect.MaxY})
	for cx := minCell.cx; cx <= maxCell.cx; cx++ {
		for cy := minCell.cy; cy <= maxCell.cy; cy++ {
			for _, id := range idx.buckets[cellKey{cx, cy}] {
				if seen[id] {
					continue
				}
				seen[id] = true
				e := idx.entries[id]
				if e.BBox.Intersects(rect) {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// Nearest returns up to k entries closest to p by Euclidean distance to
// their representative point, expanding the search ring outward from p's
// cell until enough candidates are found or the grid is exhausted.
func (idx *Index) Nearest(p geo.Point, k int) []Entry {
	if k <= 0 {
		return nil
	}
	if k >= len(idx.entries) {
		all := make([]Entry, 0, len(idx.entries))
		for _, e := range idx.entries {
			all = append(all, e)
		}
		sort.Slice(all, func(i, j int) bool {
			return geo.Distance(p, all[i].Pos) < geo.Distance(p, all[j].Pos)
		})
		return all
	}
	center := cellOf(p)
	seen := make(map[string]bool)
	var candidates []Entry
	byDistance := func() {
		sort.Slice(candidates, func(i, j int) bool {
			return geo.Distance(p, candidates[i].Pos) < geo.Distance(p, candidates[j].Pos)
		})
	}
	// Grow the search ring outward from p's cell. After ring r is scanned,
	// every unvisited cell is at least r*cellSize from p, so the search
	// stops once the k-th nearest candidate is within that distance.
	for ring := int64(0); ring <= 10000; ring++ {
		for cx := center.cx - ring; cx <= center.cx+ring; cx++ {
			for cy := center.cy - ring; cy <= center.cy+ring; cy++ {
				onBoundary := cx == center.cx-ring || cx == center.cx+ring || cy == center.cy-ring || cy == center.cy+ring
				if ring > 0 && !onBoundary {
					continue // interior already visited on a previous ring
				}
				for _, id := range idx.buckets[cellKey{cx, cy}] {
					if seen[id] {
						continue
					}
					seen[id] = true
					candidates = append(candidates, idx.entries[id])
				}
			}
		}
		if len(candidates) >= k {
			byDistance()
			if geo.Distance(p, candidates[k-1].Pos) <= float64(ring)*cellSize {
				break
			}
		}
	}

	byDistance()
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// QueryRadius returns every entry whose representative point lies within
// radius of p. Used by the candidate selector's MAX_DISTANCE filter.
func (idx *Index) QueryRadius(p geo.Point, radius float64) []Entry {
	rect := BBox{MinX: p.X - radius, MinY: p.Y - radius, MaxX: p.X + radius, MaxY: p.Y + radius}
	var out []Entry
	for _, e := range idx.QueryBBox(rect) {
		if geo.Distance(p, e.Pos) <= radius {
			out = append(out, e)
		}
	}
	return out
}
