package sim

import "encoding/json"

// FunnelChamber routes falling balls through a neck formed by four fixed
// line segments: two steep slopes into the throat and two short guides below.
type FunnelChamber struct {
	chamberBase
	walls []Segment
}

const funnelRestitution = 1.8

type funnelState struct {
	T     float64   `json:"t"`
	Walls []Segment `json:"walls"`
}

func (c *FunnelChamber) Init(w, h float64) {
	neck := 36 * c.scale
	throatY := h * 0.55
	c.walls = []Segment{
		{A: Vec2{X: 0, Y: h * 0.12}, B: Vec2{X: w/2 - neck, Y: throatY}},
		{A: Vec2{X: w, Y: h * 0.12}, B: Vec2{X: w/2 + neck, Y: throatY}},
		{A: Vec2{X: w/2 - neck, Y: throatY}, B: Vec2{X: w/2 - neck, Y: throatY + h*0.18}},
		{A: Vec2{X: w/2 + neck, Y: throatY}, B: Vec2{X: w/2 + neck, Y: throatY + h*0.18}},
	}
}

func (c *FunnelChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		for _, wall := range c.walls {
			closest := wall.ClosestPoint(b.Position)
			delta := b.Position.Minus(closest)
			dist := delta.Magnitude()
			if dist >= b.Radius {
				continue
			}
			n := delta.NormalizeOr(Up)
			b.Position = closest.Plus(n.Times(b.Radius))
			b.Velocity = reflectOffNormal(b.Velocity, n, funnelRestitution)
		}
	}
}

func (c *FunnelChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, wall := range c.walls {
		cv.Line(vp.X+wall.A.X, vp.Y+wall.A.Y, vp.X+wall.B.X, vp.Y+wall.B.Y, 3*c.scale, "#9aa7b8", 1)
	}
}

func (c *FunnelChamber) State() json.RawMessage {
	return marshalState(c.kind, funnelState{T: c.t, Walls: c.walls})
}

func (c *FunnelChamber) Restore(raw json.RawMessage) error {
	var st funnelState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Walls != nil {
		c.walls = st.Walls
	}
	return nil
}
