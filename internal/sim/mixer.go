package sim

import (
	"encoding/json"
	"math"
)

// MixerChamber spins two blades in opposite directions. A hit reflects the
// ball off the blade and adds a tangential kick proportional to the blade's
// surface speed at the contact point, stirring the population.
type MixerChamber struct {
	chamberBase
	blades []blade
}

type blade struct {
	Center Vec2    `json:"center"`
	Length float64 `json:"length"`
	Angle  float64 `json:"angle"`
	Speed  float64 `json:"speed"` // angular velocity, rad/s
}

const mixerRestitution = 1.1

type mixerState struct {
	T      float64 `json:"t"`
	Blades []blade `json:"blades"`
}

func (c *MixerChamber) Init(w, h float64) {
	length := math.Min(w, h) * 0.3
	c.blades = []blade{
		{Center: Vec2{X: w * 0.3, Y: h * 0.5}, Length: length, Angle: 0, Speed: 1.6},
		{Center: Vec2{X: w * 0.7, Y: h * 0.5}, Length: length, Angle: math.Pi / 2, Speed: -1.6},
	}
}

func (bl *blade) segment() Segment {
	dir := Vec2{X: math.Cos(bl.Angle), Y: math.Sin(bl.Angle)}
	half := bl.Length / 2
	return Segment{
		A: bl.Center.Minus(dir.Times(half)),
		B: bl.Center.Plus(dir.Times(half)),
	}
}

func (c *MixerChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for i := range c.blades {
		c.blades[i].Angle += c.blades[i].Speed * dt
	}
	for _, b := range balls {
		for i := range c.blades {
			bl := &c.blades[i]
			seg := bl.segment()
			closest := seg.ClosestPoint(b.Position)
			delta := b.Position.Minus(closest)
			dist := delta.Magnitude()
			if dist >= b.Radius {
				continue
			}
			n := delta.NormalizeOr(Up)
			b.Position = closest.Plus(n.Times(b.Radius))
			b.Velocity = reflectOffNormal(b.Velocity, n, mixerRestitution)

			// Surface velocity of the blade at the contact point.
			arm := closest.Minus(bl.Center)
			surface := arm.LeftNormal().Times(bl.Speed)
			b.Velocity = b.Velocity.Plus(surface.Times(0.6))
		}
	}
}

func (c *MixerChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, bl := range c.blades {
		seg := bl.segment()
		cv.Line(vp.X+seg.A.X, vp.Y+seg.A.Y, vp.X+seg.B.X, vp.Y+seg.B.Y, 4*c.scale, "#72b8ca", 1)
		cv.FillCircle(vp.X+bl.Center.X, vp.Y+bl.Center.Y, 4*c.scale, "#8a93a6", 1)
	}
}

func (c *MixerChamber) State() json.RawMessage {
	return marshalState(c.kind, mixerState{T: c.t, Blades: c.blades})
}

func (c *MixerChamber) Restore(raw json.RawMessage) error {
	var st mixerState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Blades != nil {
		c.blades = st.Blades
	}
	return nil
}
