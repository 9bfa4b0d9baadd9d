package roadgraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/roadgraph"
)

func straightRoad() []*model.Road {
	return []*model.Road{
		{ID: "R1", Vertices: []geo.Point{{X: 0, Y: 0}, {X: 200, Y: 0}}},
	}
}

func TestBuild_BasicEdges(t *testing.T) {
	cfg := config.Default()
	g := roadgraph.Build(straightRoad(), cfg)
	require.Len(t, g.Edges, 1)
	require.Len(t, g.Nodes, 2)
	for _, e := range g.Edges {
		require.InDelta(t, 200.0, e.Length, 1e-9)
		require.Greater(t, e.Weight, e.Length) // weight includes pole cost share
	}
}

func TestAttachPoint_SplitsSegment(t *testing.T) {
	cfg := config.Default()
	g := roadgraph.Build(straightRoad(), cfg)

	res := g.AttachPoint(geo.Point{X: 50, Y: 10}, model.NodeOriginConsumer, cfg.MaxAttachM, "consumer")
	require.True(t, res.OK)
	require.Equal(t, "consumer", res.NodeID)

	// original single edge should now be split into two road edges plus
	// one connector edge
	require.Len(t, g.Edges, 3)

	node := g.Nodes["consumer"]
	require.NotNil(t, node)
	require.Equal(t, model.NodeOriginConsumer, node.Origin)
}

func TestAttachPoint_NoRoadWithinRange(t *testing.T) {
	cfg := config.Default()
	g := roadgraph.Build(straightRoad(), cfg)
	res := g.AttachPoint(geo.Point{X: 50, Y: 1000}, model.NodeOriginConsumer, cfg.MaxAttachM, "consumer")
	require.False(t, res.OK)
}

func TestBuild_StitchesDisconnectedEndpoints(t *testing.T) {
	cfg := config.Default()
	roads := []*model.Road{
		{ID: "R1", Vertices: []geo.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}},
		{ID: "R2", Vertices: []geo.Point{{X: 105, Y: 0}, {X: 200, Y: 0}}}, // 5m gap, within SNAP_TOLERANCE
	}
	g := roadgraph.Build(roads, cfg)
	// 2 road edges + 1 synthetic stitching edge
	require.Len(t, g.Edges, 3)
}

func TestIncidentEdgesNonEmptyForEveryNode(t *testing.T) {
	cfg := config.Default()
	g := roadgraph.Build(straightRoad(), cfg)
	for id := range g.Nodes {
		require.NotEmpty(t, g.IncidentEdges(id))
	}
}
