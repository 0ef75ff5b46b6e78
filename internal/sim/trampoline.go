package sim

import "encoding/json"

// TrampolineChamber has one horizontal pad near the floor. It is a one-way
// platform: a ball falling through the pad surface bounces up with the
// vertical speed amplified, clamped between a minimum and a maximum so slow
// balls still pop and fast balls don't leave orbit.
type TrampolineChamber struct {
	chamberBase
	pad Segment
}

const (
	trampolineRestitution = 1.5
	trampolineMinSpeed    = 180.0 // scaled
	trampolineMaxSpeed    = 700.0 // scaled
)

type trampolineState struct {
	T   float64 `json:"t"`
	Pad Segment `json:"pad"`
}

func (c *TrampolineChamber) Init(w, h float64) {
	y := h * 0.78
	c.pad = Segment{
		A: Vec2{X: w * 0.2, Y: y},
		B: Vec2{X: w * 0.8, Y: y},
	}
}

func (c *TrampolineChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	y := c.pad.A.Y
	for _, b := range balls {
		if b.Velocity.Y <= 0 {
			continue // one-way: only falling balls land
		}
		if b.Position.X < c.pad.A.X || b.Position.X > c.pad.B.X {
			continue
		}
		// Crossed the surface this frame (or resting slightly inside it).
		prevY := b.Position.Y - b.Velocity.Y*dt
		if b.Position.Y+b.Radius < y || prevY-b.Radius > y {
			continue
		}
		b.Position.Y = y - b.Radius
		speed := clamp(b.Velocity.Y*trampolineRestitution,
			trampolineMinSpeed*c.scale, trampolineMaxSpeed*c.scale)
		b.Velocity.Y = -speed
	}
}

func (c *TrampolineChamber) Draw(cv Canvas) {
	vp := c.viewport
	cv.Line(vp.X+c.pad.A.X, vp.Y+c.pad.A.Y, vp.X+c.pad.B.X, vp.Y+c.pad.B.Y, 4*c.scale, "#7dff6e", 1)
}

func (c *TrampolineChamber) State() json.RawMessage {
	return marshalState(c.kind, trampolineState{T: c.t, Pad: c.pad})
}

func (c *TrampolineChamber) Restore(raw json.RawMessage) error {
	var st trampolineState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Pad.A != st.Pad.B {
		c.pad = st.Pad
	}
	return nil
}
