// Package roadgraph implements spec §4.4's Road Graph Builder (S4): a
// weighted graph built from road centerlines, with snap-merged endpoints
// and consumer/candidate attachment by segment splitting.
//
// Nodes and edges are owned by the Graph in two parallel tables, keyed by
// id rather than linked by pointer — the same structural discipline
// katalvlaran/lvlath's core.Graph documents for its own adjacency lists,
// generalized here from an integer-weighted abstract multigraph to a
// float-weighted planar road graph with real coordinates.
package roadgraph

import (
	"fmt"
	"math"
	"sort"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/spatialindex"
)

// quantEpsilon is the coordinate quantization step used to key road
// vertex nodes, per spec §4.4 ("e.g., 0.01 m").
const quantEpsilon = 0.01

// Graph owns the node and edge tables for one request's road network.
// Immutable once Build/AttachPoint calls finish; a fresh Graph is built
// per request (spec §3 Lifecycle).
type Graph struct {
	cfg config.Config

	Nodes map[string]*model.RoadNode
	Edges map[string]*model.RoadEdge

	adjacency map[string][]string // nodeID -> incident edge IDs

	edgeIndex   *spatialindex.Index // rebuilt lazily by refreshEdgeIndex
	indexStale  bool
	nextEdgeSeq int
}

// Weight implements spec §4.4's edge weight formula: weight is monotone
// in length so Euclidean distance remains an admissible A* heuristic.
func Weight(length float64, cfg config.Config) float64 {
	return length + (length/cfg.PoleIntervalM)*cfg.PoleCostShare
}

func quantizeKey(p geo.Point) string {
	qx := math.Round(p.X/quantEpsilon) * quantEpsilon
	qy := math.Round(p.Y/quantEpsilon) * quantEpsilon
	return fmt.Sprintf("v:%.2f:%.2f", qx, qy)
}

// New returns an empty Graph bound to cfg.
func New(cfg config.Config) *Graph {
	return &Graph{
		cfg:       cfg,
		Nodes:     make(map[string]*model.RoadNode),
		Edges:     make(map[string]*model.RoadEdge),
		adjacency: make(map[string][]string),
	}
}

func (g *Graph) getOrCreateVertexNode(p geo.Point) *model.RoadNode {
	key := quantizeKey(p)
	if n, ok := g.Nodes[key]; ok {
		return n
	}
	n := &model.RoadNode{ID: key, Position: p, Origin: model.NodeOriginRoadVertex}
	g.Nodes[key] = n
	return n
}

func (g *Graph) addEdge(fromID, toID string, length float64, roadID string) *model.RoadEdge {
	g.nextEdgeSeq++
	e := &model.RoadEdge{
		ID:         fmt.Sprintf("e%d", g.nextEdgeSeq),
		FromNodeID: fromID,
		ToNodeID:   toID,
		Length:     length,
		Weight:     Weight(length, g.cfg),
		RoadID:     roadID,
	}
	g.Edges[e.ID] = e
	g.adjacency[fromID] = append(g.adjacency[fromID], e.ID)
	g.adjacency[toID] = append(g.adjacency[toID], e.ID)
	g.indexStale = true
	return e
}

func (g *Graph) removeEdge(edgeID string) {
	e, ok := g.Edges[edgeID]
	if !ok {
		return
	}
	delete(g.Edges, edgeID)
	g.adjacency[e.FromNodeID] = removeString(g.adjacency[e.FromNodeID], edgeID)
	g.adjacency[e.ToNodeID] = removeString(g.adjacency[e.ToNodeID], edgeID)
	g.indexStale = true
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// IncidentEdges returns the edge ids touching nodeID.
func (g *Graph) IncidentEdges(nodeID string) []string {
	return g.adjacency[nodeID]
}

// Build constructs nodes and edges from road centerlines and stitches
// disconnected endpoints within SNAP_TOLERANCE, per spec §4.4.
func Build(roads []*model.Road, cfg config.Config) *Graph {
	g := New(cfg)

	type endpoint = struct {
		nodeID string
	}
	var endpoints []endpoint

	for _, road := range roads {
		if len(road.Vertices) < 2 {
			continue
		}
		nodes := make([]*model.RoadNode, len(road.Vertices))
		for i, v := range road.Vertices {
			nodes[i] = g.getOrCreateVertexNode(v)
		}
		for i := 1; i < len(nodes); i++ {
			if nodes[i-1].ID == nodes[i].ID {
				continue // degenerate repeated vertex after quantization
			}
			length := geo.Distance(nodes[i-1].Position, nodes[i].Position)
			if length <= 0 {
				continue
			}
			g.addEdge(nodes[i-1].ID, nodes[i].ID, length, road.ID)
		}
		endpoints = append(endpoints, endpoint{nodeID: nodes[0].ID}, endpoint{nodeID: nodes[len(nodes)-1].ID})
	}

	g.stitchDisconnected(endpoints, cfg.SnapToleranceM)
	g.refreshEdgeIndex()
	return g
}

// stitchDisconnected implements spec §4.4's "Disconnected-road stitching":
// endpoint nodes within SnapToleranceM that aren't already adjacent get a
// synthetic edge of length equal to their separation.
func (g *Graph) stitchDisconnected(endpoints []struct{ nodeID string }, tolerance float64) {
	// Stable order for deterministic edge ids across runs.
	ids := make([]string, 0, len(endpoints))
	seen := make(map[string]bool)
	for _, e := range endpoints {
		if !seen[e.nodeID] {
			seen[e.nodeID] = true
			ids = append(ids, e.nodeID)
		}
	}
	sort.Strings(ids)

	connected := func(a, b string) bool {
		for _, edgeID := range g.adjacency[a] {
			e := g.Edges[edgeID]
			if e.FromNodeID == b || e.ToNodeID == b {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := g.Nodes[ids[i]], g.Nodes[ids[j]]
			if a == nil || b == nil || a.ID == b.ID {
				continue
			}
			d := geo.Distance(a.Position, b.Position)
			if d <= tolerance && !connected(a.ID, b.ID) {
				g.addEdge(a.ID, b.ID, d, "")
			}
		}
	}
}

func (g *Graph) refreshEdgeIndex() {
	entries := make([]spatialindex.Entry, 0, len(g.Edges))
	ids := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := g.Edges[id]
		a, b := g.Nodes[e.FromNodeID].Position, g.Nodes[e.ToNodeID].Position
		bbox := spatialindex.FromPoints([]geo.Point{a, b})
		mid := geo.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		entries = append(entries, spatialindex.Entry{ID: id, BBox: bbox, Pos: mid})
	}
	g.edgeIndex = spatialindex.Build(entries)
	g.indexStale = false
}

// AttachResult describes the outcome of attaching a point to the graph.
type AttachResult struct {
	NodeID string
	OK     bool
}

// AttachPoint implements spec §4.4's consumer/candidate attachment: find
// the nearest road segment by perpendicular distance within maxAttach; if
// the foot lies strictly inside the segment, split it; otherwise connect
// to whichever endpoint the foot falls nearest. A new node of kind origin
// is added with a connecting edge.
func (g *Graph) AttachPoint(p geo.Point, origin model.NodeOrigin, maxAttach float64, nodeIDHint string) AttachResult {
	if g.indexStale {
		g.refreshEdgeIndex()
	}
	rect := spatialindex.BBox{MinX: p.X - maxAttach, MinY: p.Y - maxAttach, MaxX: p.X + maxAttach, MaxY: p.Y + maxAttach}
	cands := g.edgeIndex.QueryBBox(rect)
	if len(cands) == 0 {
		return AttachResult{OK: false}
	}

	type best struct {
		edgeID string
		foot   geo.Point
		t      float64
		dist   float64
	}
	var chosen *best
	for _, c := range cands {
		e, ok := g.Edges[c.ID]
		if !ok {
			continue
		}
		a, b := g.Nodes[e.FromNodeID].Position, g.Nodes[e.ToNodeID].Position
		foot, t, dist := geo.ProjectOntoSegment(p, geo.Segment{A: a, B: b})
		if dist > maxAttach {
			continue
		}
		if chosen == nil || dist < chosen.dist {
			chosen = &best{edgeID: c.ID, foot: foot, t: t, dist: dist}
		}
	}
	if chosen == nil {
		return AttachResult{OK: false}
	}

	e := g.Edges[chosen.edgeID]
	const edgeEps = 1e-6
	var anchorNodeID string
	if chosen.t <= edgeEps {
		anchorNodeID = e.FromNodeID
	} else if chosen.t >= 1-edgeEps {
		anchorNodeID = e.ToNodeID
	}

	if anchorNodeID != "" {
		d := geo.Distance(p, g.Nodes[anchorNodeID].Position)
		if d <= edgeEps {
			// p coincides with an existing node; no new node/edge needed.
			return AttachResult{NodeID: anchorNodeID, OK: true}
		}
		attachNodeID := nodeIDHint
		g.Nodes[attachNodeID] = &model.RoadNode{ID: attachNodeID, Position: p, Origin: origin}
		g.addEdge(attachNodeID, anchorNodeID, d, "")
		g.refreshEdgeIndex()
		return AttachResult{NodeID: attachNodeID, OK: true}
	}

	// Strictly interior: split the edge at the foot.
	footKey := fmt.Sprintf("split:%s:%.4f", chosen.edgeID, chosen.t)
	footNode := &model.RoadNode{ID: footKey, Position: chosen.foot, Origin: model.NodeOriginRoadSplit}
	g.Nodes[footKey] = footNode

	fromPos := g.Nodes[e.FromNodeID].Position
	toPos := g.Nodes[e.ToNodeID].Position
	lenA := geo.Distance(fromPos, chosen.foot)
	lenB := geo.Distance(chosen.foot, toPos)
	roadID := e.RoadID
	g.removeEdge(chosen.edgeID)
	g.addEdge(e.FromNodeID, footKey, lenA, roadID)
	g.addEdge(footKey, e.ToNodeID, lenB, roadID)

	if chosen.dist <= edgeEps {
		// p falls exactly on the segment: the split point IS the attach
		// point, no separate zero-length connector needed.
		g.refreshEdgeIndex()
		return AttachResult{NodeID: footKey, OK: true}
	}

	attachNodeID := nodeIDHint
	g.Nodes[attachNodeID] = &model.RoadNode{ID: attachNodeID, Position: p, Origin: origin}
	g.addEdge(attachNodeID, footKey, chosen.dist, "")

	g.refreshEdgeIndex()
	return AttachResult{NodeID: attachNodeID, OK: true}
}
