// Package geo provides the planar geometry primitives the routing pipeline
// needs: distance, segment intersection, projection and polyline
// interpolation. Coordinates are metric (projected plane, EPSG:3857
// semantics); there is no notion of longitude/latitude wraparound here.
package geo

import "math"

// Point is a planar coordinate in metres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the 2-D cross product (z-component) of p and q.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Hypot(dx, dy)
}

// Equal reports whether p and q are within eps of each other on both axes.
func Equal(p, q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Segment is a straight line between two points.
type Segment struct {
	A, B Point
}

// Length returns the segment's straight-line length.
func (s Segment) Length() float64 {
	return Distance(s.A, s.B)
}

// PolylineLength sums the straight-line length of consecutive vertices.
func PolylineLength(pts []Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// PointAtArcLength walks pts and returns the coordinate at arc-length d
// from pts[0], by interpolating on the enclosing segment. If d exceeds the
// polyline's total length, the last point is returned. Panics if pts has
// fewer than 2 points.
func PointAtArcLength(pts []Point, d float64) Point {
	if len(pts) < 2 {
		panic("geo: PointAtArcLength requires at least 2 points")
	}
	if d <= 0 {
		return pts[0]
	}
	remaining := d
	for i := 1; i < len(pts); i++ {
		segLen := Distance(pts[i-1], pts[i])
		if remaining <= segLen {
			if segLen == 0 {
				return pts[i-1]
			}
			t := remaining / segLen
			return lerp(pts[i-1], pts[i], t)
		}
		remaining -= segLen
	}
	return pts[len(pts)-1]
}

func lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// ProjectOntoSegment returns the perpendicular foot of p onto segment s, the
// parameter t along [A,B] (clamped to [0,1] is NOT applied here — callers
// decide whether the foot lies strictly inside the segment via t), and the
// perpendicular distance from p to the foot.
func ProjectOntoSegment(p Point, s Segment) (foot Point, t float64, dist float64) {
	ab := s.B.Sub(s.A)
	abLenSq := ab.Dot(ab)
	if abLenSq == 0 {
		return s.A, 0, Distance(p, s.A)
	}
	ap := p.Sub(s.A)
	t = ap.Dot(ab) / abLenSq
	foot = s.A.Add(ab.Scale(t))
	dist = Distance(p, foot)
	return foot, t, dist
}

const epsilon = 1e-9

// SegmentsIntersectStrict reports whether segments s1 and s2 share at least
// one point that is interior to both, i.e. a "strict crossing" per spec:
// a shared endpoint alone does not count, but collinear overlap does (it is
// still a shared interior point on both segments).
func SegmentsIntersectStrict(s1, s2 Segment) bool {
	d1 := s1.B.Sub(s1.A)
	d2 := s2.B.Sub(s2.A)
	denom := d1.Cross(d2)

	if almostZero(denom) {
		// Parallel or collinear. Only collinear overlap can be a strict
		// crossing; merely parallel, non-collinear segments never touch.
		if !almostZero(d1.Cross(s2.A.Sub(s1.A))) {
			return false
		}
		return collinearOverlapStrict(s1, s2)
	}

	t := s2.A.Sub(s1.A).Cross(d2) / denom
	u := s2.A.Sub(s1.A).Cross(d1) / denom

	// Intersection point lies on both segments when t,u in [0,1].
	if t < -epsilon || t > 1+epsilon || u < -epsilon || u > 1+epsilon {
		return false
	}

	// Strict: the intersection must be interior to BOTH segments, i.e. not
	// at t==0, t==1, u==0 or u==1 (a shared endpoint).
	if nearBound(t) || nearBound(u) {
		return false
	}
	return true
}

func nearBound(t float64) bool {
	return t < epsilon || t > 1-epsilon
}

func almostZero(v float64) bool {
	return math.Abs(v) < epsilon
}

// collinearOverlapStrict handles the degenerate collinear case: segments
// share a supporting line. Returns true if their overlap, projected onto
// the shared line, has positive length strictly inside both segments
// (touching only at a shared endpoint is not a strict crossing).
func collinearOverlapStrict(s1, s2 Segment) bool {
	// Parametrize everything along s1's direction.
	dir := s1.B.Sub(s1.A)
	lenSq := dir.Dot(dir)
	if lenSq == 0 {
		return false
	}
	paramOf := func(p Point) float64 {
		return p.Sub(s1.A).Dot(dir) / lenSq
	}
	a0, a1 := 0.0, 1.0
	b0, b1 := paramOf(s2.A), paramOf(s2.B)
	if b0 > b1 {
		b0, b1 = b1, b0
	}
	lo := math.Max(a0, b0)
	hi := math.Min(a1, b1)
	if hi-lo <= epsilon {
		return false
	}
	// Overlap interval [lo,hi] must contain points strictly interior to
	// both [0,1] (s1) and [b0,b1] (s2); since it's already clamped to both,
	// any positive-length overlap not reduced to a point satisfies that,
	// UNLESS the entire overlap is exactly a single shared endpoint pair.
	return true
}

// PointInPolygon reports whether p lies strictly inside the polygon
// described by ring (closed or open — the last-to-first edge is implied).
// Uses the standard ray-casting algorithm; points exactly on an edge are
// NOT considered strictly inside.
func PointInPolygon(p Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if onSegment(p, Segment{A: vi, B: vj}) {
			return false
		}
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xIntersect := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(p Point, s Segment) bool {
	_, t, dist := ProjectOntoSegment(p, s)
	return dist < epsilon && t >= -epsilon && t <= 1+epsilon
}
