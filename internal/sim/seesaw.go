package sim

import (
	"encoding/json"
	"math"
)

// SeesawChamber is a single plank pivoting at the chamber center. A spring
// torque pulls it back toward level, damping bleeds angular velocity, and
// ball impacts torque it proportionally to the lever arm of the hit.
type SeesawChamber struct {
	chamberBase
	pivot      Vec2
	halfLength float64
	angle      float64
	angVel     float64
}

const (
	seesawRestitution = 1.2
	seesawMaxAngle    = 0.4 // radians
)

type seesawState struct {
	T          float64 `json:"t"`
	Pivot      Vec2    `json:"pivot"`
	HalfLength float64 `json:"half_length"`
	Angle      float64 `json:"angle"`
	AngVel     float64 `json:"ang_vel"`
}

func (c *SeesawChamber) Init(w, h float64) {
	c.pivot = Vec2{X: w / 2, Y: h * 0.6}
	c.halfLength = w * 0.32
	c.angle = 0
	c.angVel = 0
}

func (c *SeesawChamber) plank() Segment {
	dir := Vec2{X: math.Cos(c.angle), Y: math.Sin(c.angle)}
	return Segment{
		A: c.pivot.Minus(dir.Times(c.halfLength)),
		B: c.pivot.Plus(dir.Times(c.halfLength)),
	}
}

func (c *SeesawChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)

	// Spring back toward level, then damp and integrate.
	c.angVel -= c.angle * 2 * dt
	c.angVel *= 0.98
	c.angle += c.angVel * dt
	if c.angle > seesawMaxAngle {
		c.angle = seesawMaxAngle
		c.angVel = 0
	} else if c.angle < -seesawMaxAngle {
		c.angle = -seesawMaxAngle
		c.angVel = 0
	}

	plank := c.plank()
	dir := plank.Direction()
	for _, b := range balls {
		closest := plank.ClosestPoint(b.Position)
		delta := b.Position.Minus(closest)
		dist := delta.Magnitude()
		if dist >= b.Radius {
			continue
		}
		n := delta.NormalizeOr(Up)
		impact := -b.Velocity.Dot(n)
		b.Position = closest.Plus(n.Times(b.Radius))
		b.Velocity = reflectOffNormal(b.Velocity, n, seesawRestitution)

		// Lever-arm torque: offset along the plank from the pivot, signed.
		if impact > 0 {
			offset := closest.Minus(c.pivot).Dot(dir) / c.halfLength
			c.angVel += offset * impact * 0.004
		}
	}
}

func (c *SeesawChamber) Draw(cv Canvas) {
	vp := c.viewport
	plank := c.plank()
	cv.Line(vp.X+plank.A.X, vp.Y+plank.A.Y, vp.X+plank.B.X, vp.Y+plank.B.Y, 4*c.scale, "#caa472", 1)
	cv.FillCircle(vp.X+c.pivot.X, vp.Y+c.pivot.Y, 5*c.scale, "#8a93a6", 1)
}

func (c *SeesawChamber) State() json.RawMessage {
	return marshalState(c.kind, seesawState{
		T: c.t, Pivot: c.pivot, HalfLength: c.halfLength,
		Angle: c.angle, AngVel: c.angVel,
	})
}

func (c *SeesawChamber) Restore(raw json.RawMessage) error {
	var st seesawState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if !st.Pivot.IsZero() {
		c.pivot = st.Pivot
	}
	if st.HalfLength > 0 {
		c.halfLength = st.HalfLength
	}
	c.angle = st.Angle
	c.angVel = st.AngVel
	return nil
}
