// Package ranker implements spec §4.10's Route Ranker (S10): stable
// sort of accepted routes by (cost_index, total_distance, start_pole_id),
// rank assignment starting at 1, and MAX_ROUTES truncation.
package ranker

import (
	"sort"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/model"
)

// Rank sorts routes by (cost_index, total_distance, start_pole_id) for
// determinism and assigns Rank starting at 1, truncating at
// cfg.MaxRoutes. routes is sorted in place and also returned.
func Rank(routes []*model.RouteResult, cfg config.Config) []*model.RouteResult {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.CostIndex != b.CostIndex {
			return a.CostIndex < b.CostIndex
		}
		if a.TotalDistance != b.TotalDistance {
			return a.TotalDistance < b.TotalDistance
		}
		return a.StartPoleID < b.StartPoleID
	})

	if len(routes) > cfg.MaxRoutes {
		routes = routes[:cfg.MaxRoutes]
	}
	for i, r := range routes {
		r.Rank = i + 1
	}
	return routes
}
