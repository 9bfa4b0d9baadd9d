// Package crossing implements spec §4.6's Crossing Validator (S6): a
// candidate path is rejected if it strictly crosses any existing line
// (an HV/LV overhead wire) rather than merely running alongside or
// meeting it at a shared endpoint.
//
// The short-circuit-on-first-hit control flow and "found_id"/"found_type"
// naming is grounded on other_examples' road-crossing checker, adapted
// here from road/rail crossings to overhead-line crossings.
package crossing

import (
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/spatialindex"
)

// Violation describes the first existing line a candidate path strictly
// crosses.
type Violation struct {
	LineID   string
	LineType model.LineType
}

// Index wraps a spatialindex.Index built over existing lines' bounding
// boxes, so repeated path checks within one request don't re-scan every
// line's full bbox linearly.
type Index struct {
	lines   map[string]*model.Line
	spatial *spatialindex.Index
}

// Build indexes lines by bounding box for fast candidate prefiltering.
func Build(lines []*model.Line) *Index {
	entries := make([]spatialindex.Entry, 0, len(lines))
	byID := make(map[string]*model.Line, len(lines))
	for _, l := range lines {
		if len(l.Vertices) < 2 {
			continue
		}
		byID[l.ID] = l
		entries = append(entries, spatialindex.Entry{
			ID:   l.ID,
			BBox: spatialindex.FromPoints(l.Vertices),
			Pos:  l.Vertices[0],
		})
	}
	return &Index{lines: byID, spatial: spatialindex.Build(entries)}
}

// Check reports the first existing line that the path polyline strictly
// crosses, per spec §4.6, or nil if the path crosses nothing. Checks
// path segments in order and line segments in order, so the result is
// deterministic across runs for the same input.
func (idx *Index) Check(path []geo.Point) *Violation {
	if len(path) < 2 {
		return nil
	}
	pathBBox := spatialindex.FromPoints(path)
	cands := idx.spatial.QueryBBox(pathBBox)

	for i := 1; i < len(path); i++ {
		pathSeg := geo.Segment{A: path[i-1], B: path[i]}
		for _, c := range cands {
			line, ok := idx.lines[c.ID]
			if !ok {
				continue
			}
			for j := 1; j < len(line.Vertices); j++ {
				lineSeg := geo.Segment{A: line.Vertices[j-1], B: line.Vertices[j]}
				if geo.SegmentsIntersectStrict(pathSeg, lineSeg) {
					return &Violation{LineID: line.ID, LineType: line.LineType}
				}
			}
		}
	}
	return nil
}
