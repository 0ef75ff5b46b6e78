package sim

import (
	"encoding/json"
	"math"
)

// ConveyorChamber runs two belts moving in opposite directions. Landing on a
// belt kills vertical speed (one-way platform) and drags the ball's
// horizontal velocity toward the belt speed with exponential friction.
type ConveyorChamber struct {
	chamberBase
	belts []belt
}

type belt struct {
	Y     float64 `json:"y"`
	X     float64 `json:"x"`
	W     float64 `json:"w"`
	Speed float64 `json:"speed"` // signed surface speed, px/s
}

const conveyorFriction = 6.0 // 1/s, exponential blend rate

type conveyorState struct {
	T     float64 `json:"t"`
	Belts []belt  `json:"belts"`
}

func (c *ConveyorChamber) Init(w, h float64) {
	speed := 160 * c.scale
	c.belts = []belt{
		{Y: h * 0.38, X: w * 0.08, W: w * 0.84, Speed: speed},
		{Y: h * 0.72, X: w * 0.08, W: w * 0.84, Speed: -speed},
	}
}

func (c *ConveyorChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		for _, bt := range c.belts {
			if b.Velocity.Y < 0 {
				continue
			}
			if b.Position.X < bt.X || b.Position.X > bt.X+bt.W {
				continue
			}
			prevY := b.Position.Y - b.Velocity.Y*dt
			if b.Position.Y+b.Radius < bt.Y || prevY-b.Radius > bt.Y {
				continue
			}
			b.Position.Y = bt.Y - b.Radius
			b.Velocity.Y = 0
			blend := 1 - math.Exp(-conveyorFriction*dt)
			b.Velocity.X += (bt.Speed - b.Velocity.X) * blend
		}
	}
}

func (c *ConveyorChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, bt := range c.belts {
		cv.Line(vp.X+bt.X, vp.Y+bt.Y, vp.X+bt.X+bt.W, vp.Y+bt.Y, 4*c.scale, "#555f6e", 1)
		// direction chevron at the belt center
		cx := bt.X + bt.W/2
		dir := 8 * c.scale
		if bt.Speed < 0 {
			dir = -dir
		}
		cv.Line(vp.X+cx, vp.Y+bt.Y-3*c.scale, vp.X+cx+dir, vp.Y+bt.Y-3*c.scale, 2, "#9aa7b8", 0.9)
	}
}

func (c *ConveyorChamber) State() json.RawMessage {
	return marshalState(c.kind, conveyorState{T: c.t, Belts: c.belts})
}

func (c *ConveyorChamber) Restore(raw json.RawMessage) error {
	var st conveyorState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Belts != nil {
		c.belts = st.Belts
	}
	return nil
}
