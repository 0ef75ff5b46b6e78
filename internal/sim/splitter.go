package sim

import (
	"encoding/json"
	"math"
	"math/rand"
)

// SplitterChamber is a wedge: two walls meeting at an apex with a randomized
// tilt and spread, dividing the falling stream left and right. Collision uses
// the signed distance to each wall line and only pushes back balls that are
// actually moving into the wall.
type SplitterChamber struct {
	chamberBase
	walls []Segment
}

const splitterRestitution = 1.5

type splitterState struct {
	T     float64   `json:"t"`
	Walls []Segment `json:"walls"`
}

func (c *SplitterChamber) Init(w, h float64) {
	apex := Vec2{X: w / 2, Y: h*0.25 + rand.Float64()*h*0.2}
	tilt := (rand.Float64() - 0.5) * 0.5
	spread := 0.5 + rand.Float64()*0.5 // half-angle of the wedge
	length := h * 0.55

	left := apex.Plus(Vec2{
		X: math.Cos(math.Pi/2+spread+tilt) * length,
		Y: math.Sin(math.Pi/2+spread+tilt) * length,
	})
	right := apex.Plus(Vec2{
		X: math.Cos(math.Pi/2-spread+tilt) * length,
		Y: math.Sin(math.Pi/2-spread+tilt) * length,
	})
	c.walls = []Segment{{A: apex, B: left}, {A: apex, B: right}}
}

func (c *SplitterChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		for _, wall := range c.walls {
			closest := wall.ClosestPoint(b.Position)
			if b.Position.Minus(closest).Magnitude() >= b.Radius {
				continue
			}
			// Orient the wall normal toward the ball's side of the line.
			n := wall.Normal()
			if signedDistanceToLine(b.Position, wall.A, n) < 0 {
				n = n.Times(-1)
			}
			if b.Velocity.Dot(n) >= 0 {
				continue // grazing along or leaving the wall
			}
			pen := b.Radius - b.Position.Minus(closest).Magnitude()
			b.Position = b.Position.Plus(n.Times(pen))
			b.Velocity = reflectOffNormal(b.Velocity, n, splitterRestitution)
		}
	}
}

func (c *SplitterChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, wall := range c.walls {
		cv.Line(vp.X+wall.A.X, vp.Y+wall.A.Y, vp.X+wall.B.X, vp.Y+wall.B.Y, 3*c.scale, "#b0a080", 1)
	}
}

func (c *SplitterChamber) State() json.RawMessage {
	return marshalState(c.kind, splitterState{T: c.t, Walls: c.walls})
}

func (c *SplitterChamber) Restore(raw json.RawMessage) error {
	var st splitterState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Walls != nil {
		c.walls = st.Walls
	}
	return nil
}
