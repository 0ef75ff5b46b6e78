package sim

import (
	"encoding/json"
	"math/rand"
)

// MagnetChamber has a single point attractor or repulsor at a random spot.
// The inverse-square force is clamped at the core radius so a ball sitting
// on the singularity never sees an unbounded pull, and the solid core itself
// bounces.
type MagnetChamber struct {
	chamberBase
	pos        Vec2
	coreRadius float64
	strength   float64 // positive attracts, negative repels
}

const magnetCoreRestitution = 1.5

type magnetState struct {
	T          float64 `json:"t"`
	Pos        Vec2    `json:"pos"`
	CoreRadius float64 `json:"core_radius"`
	Strength   float64 `json:"strength"`
}

func (c *MagnetChamber) Init(w, h float64) {
	c.pos = Vec2{
		X: w*0.3 + rand.Float64()*w*0.4,
		Y: h*0.3 + rand.Float64()*h*0.4,
	}
	c.coreRadius = 16 * c.scale
	c.strength = 2.6e6 * c.scale * c.scale
	if rand.Float64() < 0.4 {
		c.strength = -c.strength
	}
}

func (c *MagnetChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		delta := c.pos.Minus(b.Position)
		dist := delta.Magnitude()

		minDist := b.Radius + c.coreRadius
		if dist < minDist {
			n := b.Position.Minus(c.pos).NormalizeOr(Up)
			b.Position = c.pos.Plus(n.Times(minDist))
			b.Velocity = reflectOffNormal(b.Velocity, n, magnetCoreRestitution)
			continue
		}

		// Inverse-square pull, distance clamped to the core radius.
		effDist := dist
		if effDist < c.coreRadius {
			effDist = c.coreRadius
		}
		accel := c.strength / (effDist * effDist)
		dir := delta.NormalizeOr(Up)
		b.Velocity = b.Velocity.Plus(dir.Times(accel * dt))
	}
}

func (c *MagnetChamber) Draw(cv Canvas) {
	vp := c.viewport
	color := "#5dd7ff"
	if c.strength < 0 {
		color = "#ff5d5d"
	}
	cv.FillCircle(vp.X+c.pos.X, vp.Y+c.pos.Y, c.coreRadius, color, 1)
	cv.StrokeCircle(vp.X+c.pos.X, vp.Y+c.pos.Y, c.coreRadius*2.2, 1, color, 0.4)
}

func (c *MagnetChamber) State() json.RawMessage {
	return marshalState(c.kind, magnetState{T: c.t, Pos: c.pos, CoreRadius: c.coreRadius, Strength: c.strength})
}

func (c *MagnetChamber) Restore(raw json.RawMessage) error {
	var st magnetState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if !st.Pos.IsZero() {
		c.pos = st.Pos
	}
	if st.CoreRadius > 0 {
		c.coreRadius = st.CoreRadius
	}
	if st.Strength != 0 {
		c.strength = st.Strength
	}
	return nil
}
