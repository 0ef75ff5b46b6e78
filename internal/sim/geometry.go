package sim

import "math"

// Rect is an axis-aligned rectangle. Viewports and zone obstacles use it.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// OverlapsCircle reports whether the circle's bounding extent touches the
// rectangle. This is the viewport routing test from the update pipeline:
// ball.x ± radius vs the rect on both axes.
func (r Rect) OverlapsCircle(c Vec2, radius float64) bool {
	return c.X+radius >= r.X && c.X-radius <= r.X+r.W &&
		c.Y+radius >= r.Y && c.Y-radius <= r.Y+r.H
}

func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Segment is a line segment between two points in chamber-local pixels.
type Segment struct {
	A Vec2 `json:"a"`
	B Vec2 `json:"b"`
}

// ClosestPoint returns the point on the segment nearest to p.
func (s Segment) ClosestPoint(p Vec2) Vec2 {
	ab := s.B.Minus(s.A)
	lenSq := ab.MagnitudeSquared()
	if lenSq == 0 {
		return s.A
	}
	t := p.Minus(s.A).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return s.A.Plus(ab.Times(t))
}

// Direction returns the normalized A→B direction.
func (s Segment) Direction() Vec2 {
	return s.B.Minus(s.A).NormalizeOr(Vec2{X: 1})
}

// Normal returns the left normal of the segment direction.
func (s Segment) Normal() Vec2 {
	return s.Direction().LeftNormal()
}

func (s Segment) Length() float64 {
	return s.B.Minus(s.A).Magnitude()
}

// reflectOffNormal applies a restitution bounce to v along the unit normal n,
// only when v approaches the surface (v·n < 0). The reflected normal speed is
// restitution times the incoming normal speed, so values above 1 add energy.
func reflectOffNormal(v Vec2, n Vec2, restitution float64) Vec2 {
	vn := v.Dot(n)
	if vn >= 0 {
		return v
	}
	return v.Minus(n.Times((1 + restitution) * vn))
}

// signedDistanceToLine returns the signed distance from p to the infinite
// line through a with unit normal n.
func signedDistanceToLine(p, a, n Vec2) float64 {
	return p.Minus(a).Dot(n)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
