// Package candidate implements spec §4.3's Candidate Selector (S3):
// phase matching, radius filtering, fast-track flagging and priority
// scoring over normalized poles.
package candidate

import (
	"sort"

	"github.com/samber/lo"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
)

// StatusNoCandidate names the status (not a Go error per spec §7) for a
// request where no pole survives phase matching and the radius filter.
const StatusNoCandidate = "NoCandidate"

// Select runs the full S3 pipeline: phase match -> radius filter ->
// fast-track flag -> priority score -> sort by (priority, distance).
// Returns an empty slice (not an error) when no candidate survives,
// matching spec §4.3's "status NoCandidate, empty route list" contract —
// the caller (orchestrate) is responsible for turning that into a status.
func Select(poles []*model.Pole, consumer geo.Point, phase model.PhaseClass, cfg config.Config) []*model.Candidate {
	matched := lo.Filter(poles, func(p *model.Pole, _ int) bool {
		return phaseMatches(p, phase)
	})

	withinRadius := lo.FilterMap(matched, func(p *model.Pole, _ int) (*model.Candidate, bool) {
		d := geo.Distance(p.Position, consumer)
		if d > cfg.MaxDistanceM {
			return nil, false
		}
		return &model.Candidate{
			Pole:        p,
			Distance:    d,
			IsFastTrack: d <= cfg.FastTrackLimitM,
		}, true
	})

	for _, c := range withinRadius {
		c.Priority = Priority(c.Pole, c.Distance, phase)
	}

	sort.Slice(withinRadius, func(i, j int) bool {
		if withinRadius[i].Priority != withinRadius[j].Priority {
			return withinRadius[i].Priority < withinRadius[j].Priority
		}
		return withinRadius[i].Distance < withinRadius[j].Distance
	})

	return withinRadius
}

// phaseMatches implements spec §4.3's phase matching rule.
func phaseMatches(p *model.Pole, phase model.PhaseClass) bool {
	switch phase {
	case model.PhaseThree:
		return p.IsThreePhaseConnected
	case model.PhaseSingle:
		return p.HasLV || p.HasHV
	default:
		return false
	}
}

// Priority implements spec §4.3's priority scoring formula, used only as
// a pathfinding tie-break/early-exit order, never as the final rank.
func Priority(p *model.Pole, distance float64, phase model.PhaseClass) int {
	base := int(distance)
	switch phase {
	case model.PhaseSingle:
		if p.HasLV {
			return base - 100
		}
		if p.HasHV {
			return base + 50
		}
	case model.PhaseThree:
		if p.IsThreePhaseConnected {
			return base - 100
		}
		if p.HasHV {
			return base - 50
		}
	}
	return base
}
