package spatialindex_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/spatialindex"
)

func buildTestIndex() *spatialindex.Index {
	entries := []spatialindex.Entry{
		{ID: "a", Pos: geo.Point{X: 0, Y: 0}, BBox: spatialindex.BBox{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0}},
		{ID: "b", Pos: geo.Point{X: 10, Y: 0}, BBox: spatialindex.BBox{MinX: 10, MinY: 0, MaxX: 10, MaxY: 0}},
		{ID: "c", Pos: geo.Point{X: 200, Y: 200}, BBox: spatialindex.BBox{MinX: 200, MinY: 200, MaxX: 200, MaxY: 200}},
	}
	return spatialindex.Build(entries)
}

func TestQueryRadius(t *testing.T) {
	idx := buildTestIndex()
	got := idx.QueryRadius(geo.Point{X: 0, Y: 0}, 15)
	require.Len(t, got, 2)
}

func TestNearest(t *testing.T) {
	idx := buildTestIndex()
	got := idx.Nearest(geo.Point{X: 0, Y: 0}, 2)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "b", got[1].ID)
}

func TestQueryBBox(t *testing.T) {
	idx := buildTestIndex()
	got := idx.QueryBBox(spatialindex.BBox{MinX: -5, MinY: -5, MaxX: 5, MaxY: 5})
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ID)
}
