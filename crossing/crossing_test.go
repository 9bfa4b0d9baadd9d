package crossing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/crossing"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
)

func TestCheck_StrictCrossingDetected(t *testing.T) {
	lines := []*model.Line{
		{ID: "L1", LineType: model.LineTypeHV, Vertices: []geo.Point{{X: 0, Y: -10}, {X: 0, Y: 10}}},
	}
	idx := crossing.Build(lines)

	path := []geo.Point{{X: -10, Y: 0}, {X: 10, Y: 0}}
	v := idx.Check(path)
	require.NotNil(t, v)
	require.Equal(t, "L1", v.LineID)
	require.Equal(t, model.LineTypeHV, v.LineType)
}

func TestCheck_SharedEndpointNotAViolation(t *testing.T) {
	lines := []*model.Line{
		{ID: "L1", LineType: model.LineTypeLV, Vertices: []geo.Point{{X: 0, Y: 0}, {X: 0, Y: 10}}},
	}
	idx := crossing.Build(lines)

	path := []geo.Point{{X: -10, Y: 0}, {X: 0, Y: 0}}
	v := idx.Check(path)
	require.Nil(t, v)
}

func TestCheck_NoCrossing(t *testing.T) {
	lines := []*model.Line{
		{ID: "L1", LineType: model.LineTypeLV, Vertices: []geo.Point{{X: 100, Y: 100}, {X: 200, Y: 200}}},
	}
	idx := crossing.Build(lines)

	path := []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	v := idx.Check(path)
	require.Nil(t, v)
}

func TestCheck_ShortCircuitsOnFirstHit(t *testing.T) {
	lines := []*model.Line{
		{ID: "L1", LineType: model.LineTypeHV, Vertices: []geo.Point{{X: 5, Y: -10}, {X: 5, Y: 10}}},
		{ID: "L2", LineType: model.LineTypeLV, Vertices: []geo.Point{{X: 15, Y: -10}, {X: 15, Y: 10}}},
	}
	idx := crossing.Build(lines)

	path := []geo.Point{{X: 0, Y: 0}, {X: 20, Y: 0}}
	v := idx.Check(path)
	require.NotNil(t, v)
	require.Equal(t, "L1", v.LineID) // first segment-order hit, deterministic
}
