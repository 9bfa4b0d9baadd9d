// Package pathfinder implements spec §4.5's A* shortest-path search over
// a roadgraph.Graph, one candidate at a time.
//
// The priority-queue/early-termination shape is grounded on
// katalvlaran/lvlath/dijkstra: a container/heap-backed min-heap, a
// "stop once the best-known distance exceeds MaxDistance" early exit,
// and lazy decrease-key (push duplicates, skip stale pops on pop). A*
// generalizes that with an admissible Euclidean heuristic, since road
// graph edge weight is monotone in length (spec §4.4).
package pathfinder

import (
	"container/heap"
	"sort"

	"github.com/ELBIXishere/gridrouter/config"
	"github.com/ELBIXishere/gridrouter/geo"
	"github.com/ELBIXishere/gridrouter/model"
	"github.com/ELBIXishere/gridrouter/roadgraph"
)

// HeuristicCache memoises pairwise Euclidean distances within one
// request. Per spec §4.5 and §9, its presence must not alter results —
// it is pure memoisation of a pure function, discarded at request end.
type HeuristicCache struct {
	m map[[2]string]float64
}

func newHeuristicCache() *HeuristicCache {
	return &HeuristicCache{m: make(map[[2]string]float64)}
}

func (c *HeuristicCache) distance(fromID string, from geo.Point, toID string, to geo.Point) float64 {
	key := [2]string{fromID, toID}
	if v, ok := c.m[key]; ok {
		return v
	}
	d := geo.Distance(from, to)
	c.m[key] = d
	return d
}

type pqItem struct {
	nodeID   string
	priority float64 // g + h
	gScore   float64
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	// Deterministic tie-break on node id, per spec §4.5.
	return pq[i].nodeID < pq[j].nodeID
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// FindPath runs A* from the consumer node to the candidate's attachment
// node (candidateNodeID). Nodes whose accumulated edge length already
// exceeds cfg.MaxDistanceM are not expanded, and the result is
// unreachable if the goal is never popped. The goal itself can be
// reached over an edge that crosses the cap, so a reachable result may
// have TotalDistance above cfg.MaxDistanceM; callers check it.
func FindPath(g *roadgraph.Graph, consumerNodeID, candidateNodeID string, cand *model.Candidate, cfg config.Config, cache *HeuristicCache) *model.PathResult {
	if cache == nil {
		cache = newHeuristicCache()
	}

	goalPos := g.Nodes[candidateNodeID].Position

	gScore := map[string]float64{consumerNodeID: 0}
	length := map[string]float64{consumerNodeID: 0}
	prevNode := map[string]string{}
	prevEdge := map[string]string{}
	closed := map[string]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	h0 := cache.distance(consumerNodeID, g.Nodes[consumerNodeID].Position, candidateNodeID, goalPos)
	heap.Push(pq, &pqItem{nodeID: consumerNodeID, priority: h0, gScore: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if closed[cur.nodeID] {
			continue
		}
		if cur.gScore > gScore[cur.nodeID] {
			continue // stale entry (lazy decrease-key)
		}
		closed[cur.nodeID] = true

		if cur.nodeID == candidateNodeID {
			return buildResult(g, consumerNodeID, candidateNodeID, prevNode, prevEdge, cand, length[cur.nodeID], cur.gScore)
		}

		if length[cur.nodeID] > cfg.MaxDistanceM {
			continue // early termination: exceeded distance cap along this path
		}

		for _, edgeID := range g.IncidentEdges(cur.nodeID) {
			e := g.Edges[edgeID]
			neighbor := e.ToNodeID
			if neighbor == cur.nodeID {
				neighbor = e.FromNodeID
			}
			if closed[neighbor] {
				continue
			}
			tentativeG := cur.gScore + e.Weight
			tentativeLen := length[cur.nodeID] + e.Length
			if existing, ok := gScore[neighbor]; ok && tentativeG >= existing {
				continue
			}
			gScore[neighbor] = tentativeG
			length[neighbor] = tentativeLen
			prevNode[neighbor] = cur.nodeID
			prevEdge[neighbor] = edgeID
			h := cache.distance(neighbor, g.Nodes[neighbor].Position, candidateNodeID, goalPos)
			heap.Push(pq, &pqItem{nodeID: neighbor, priority: tentativeG + h, gScore: tentativeG})
		}
	}

	return &model.PathResult{Candidate: cand, Reachable: false}
}

func buildResult(g *roadgraph.Graph, fromID, toID string, prevNode, prevEdge map[string]string, cand *model.Candidate, totalLength, totalWeight float64) *model.PathResult {
	var nodeIDs []string
	cur := toID
	for {
		nodeIDs = append(nodeIDs, cur)
		if cur == fromID {
			break
		}
		p, ok := prevNode[cur]
		if !ok {
			break
		}
		cur = p
	}
	// reverse
	for i, j := 0, len(nodeIDs)-1; i < j; i, j = i+1, j-1 {
		nodeIDs[i], nodeIDs[j] = nodeIDs[j], nodeIDs[i]
	}
	poly := make([]geo.Point, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		poly = append(poly, g.Nodes[id].Position)
	}
	return &model.PathResult{
		Candidate:     cand,
		Polyline:      poly,
		TotalDistance: totalLength,
		TotalWeight:   totalWeight,
		Reachable:     true,
	}
}

// FastTrackPath implements spec §4.5's direct-segment shortcut for a
// fast-track candidate: the polyline is exactly [consumer, candidate].
func FastTrackPath(consumer geo.Point, cand *model.Candidate) *model.PathResult {
	d := geo.Distance(consumer, cand.Pole.Position)
	return &model.PathResult{
		Candidate:     cand,
		Polyline:      []geo.Point{consumer, cand.Pole.Position},
		TotalDistance: d,
		TotalWeight:   d,
		Reachable:     true,
		FastTrack:     true,
	}
}

// NewHeuristicCache constructs a fresh, request-scoped HeuristicCache for
// reuse across multiple FindPath calls within the same request (spec §4.5).
func NewHeuristicCache() *HeuristicCache { return newHeuristicCache() }

// SortCandidatesByPriority is a thin re-export point: the pathfinder
// consumes candidates in the priority order established by package
// candidate; this helper exists so callers that reorder mid-pipeline
// (e.g. after dropping unattached candidates) can restore it deterministically.
func SortCandidatesByPriority(cands []*model.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Priority != cands[j].Priority {
			return cands[i].Priority < cands[j].Priority
		}
		return cands[i].Distance < cands[j].Distance
	})
}
