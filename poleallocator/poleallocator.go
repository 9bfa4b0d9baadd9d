// Package poleallocator implements spec §4.7's Pole Allocator (S7):
// fixed-interval arc-length placement of new poles along an accepted
// path, with a building-avoidance nudge.
package poleallocator

import (
	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
)

// Result is the outcome of allocating new poles along a path.
type Result struct {
	Coordinates []geo.Point
	Rejected    bool // true if a nudge could not clear an obstructing building
}

// Allocate places new poles at k*PoleIntervalM for k=1..floor(L/interval),
// per spec §4.7. Fast-track paths never get new poles. Each candidate
// coordinate falling strictly inside a Building is nudged along the
// polyline by up to PoleNudgeM in either direction; if no nudge clears
// it, Result.Rejected is true and the path must not be used.
func Allocate(path []geo.Point, totalLength float64, fastTrack bool, buildings []*model.Building, cfg config.Config) Result {
	if fastTrack {
		return Result{}
	}
	if len(path) < 2 {
		return Result{}
	}

	count := int(totalLength / cfg.PoleIntervalM)
	coords := make([]geo.Point, 0, count)
	for k := 1; k <= count; k++ {
		d := float64(k) * cfg.PoleIntervalM
		p := geo.PointAtArcLength(path, d)
		cleared, ok := clearBuildings(path, d, p, buildings, cfg.PoleNudgeM)
		if !ok {
			return Result{Rejected: true}
		}
		coords = append(coords, cleared)
	}
	return Result{Coordinates: coords}
}

// clearBuildings returns p unchanged if it lies outside every building.
// Otherwise it slides along the polyline's arc length in 1 m steps, up
// to maxNudge in either direction, and returns the first position clear
// of all buildings. ok is false if no such position exists within budget.
func clearBuildings(path []geo.Point, arcLen float64, p geo.Point, buildings []*model.Building, maxNudge float64) (geo.Point, bool) {
	if !insideAny(p, buildings) {
		return p, true
	}

	const step = 1.0
	for offset := step; offset <= maxNudge; offset += step {
		if fwd := geo.PointAtArcLength(path, arcLen+offset); !insideAny(fwd, buildings) {
			return fwd, true
		}
		if bwd := geo.PointAtArcLength(path, arcLen-offset); !insideAny(bwd, buildings) {
			return bwd, true
		}
	}
	return geo.Point{}, false
}

func insideAny(p geo.Point, buildings []*model.Building) bool {
	for _, b := range buildings {
		if geo.PointInPolygon(p, b.Ring) {
			return true
		}
	}
	return false
}
