package ranker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/ranker"
)

func TestRank_SortsByCostIndexThenDistanceThenPoleID(t *testing.T) {
	cfg := config.Default()
	routes := []*model.RouteResult{
		{StartPoleID: "P3", CostIndex: 5000, TotalDistance: 100},
		{StartPoleID: "P1", CostIndex: 4000, TotalDistance: 200},
		{StartPoleID: "P2", CostIndex: 4000, TotalDistance: 200 - 0.3}, // E6: tie on cost_index, shorter wins
	}
	got := ranker.Rank(routes, cfg)
	require.Equal(t, "P2", got[0].StartPoleID)
	require.Equal(t, 1, got[0].Rank)
	require.Equal(t, "P1", got[1].StartPoleID)
	require.Equal(t, 2, got[1].Rank)
	require.Equal(t, "P3", got[2].StartPoleID)
	require.Equal(t, 3, got[2].Rank)
}

func TestRank_TiebreakOnStartPoleID(t *testing.T) {
	cfg := config.Default()
	routes := []*model.RouteResult{
		{StartPoleID: "Pz", CostIndex: 1000, TotalDistance: 50},
		{StartPoleID: "Pa", CostIndex: 1000, TotalDistance: 50},
	}
	got := ranker.Rank(routes, cfg)
	require.Equal(t, "Pa", got[0].StartPoleID)
	require.Equal(t, "Pz", got[1].StartPoleID)
}

func TestRank_TruncatesAtMaxRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRoutes = 2
	routes := []*model.RouteResult{
		{StartPoleID: "A", CostIndex: 1}, {StartPoleID: "B", CostIndex: 2}, {StartPoleID: "C", CostIndex: 3},
	}
	got := ranker.Rank(routes, cfg)
	require.Len(t, got, 2)
}
