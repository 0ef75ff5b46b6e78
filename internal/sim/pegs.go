package sim

import (
	"encoding/json"
	"math/rand"
)

// PegsChamber scatters static circular pegs. Balls reflect off them with a
// super-elastic restitution plus a little lateral jitter so columns of balls
// don't stack on a peg forever.
type PegsChamber struct {
	chamberBase
	pegs      []Vec2
	pegRadius float64
}

const (
	pegCount       = 9
	pegRestitution = 1.5
)

type pegsState struct {
	T         float64 `json:"t"`
	Pegs      []Vec2  `json:"pegs"`
	PegRadius float64 `json:"peg_radius"`
}

func (c *PegsChamber) Init(w, h float64) {
	c.pegRadius = 11 * c.scale
	margin := c.pegRadius * 3
	minDist := c.pegRadius * 5
	c.pegs = c.pegs[:0]
	for i := 0; i < pegCount; i++ {
		p, ok := placeNonOverlapping(w, h, margin, minDist, c.pegs)
		if !ok {
			break
		}
		c.pegs = append(c.pegs, p)
	}
}

func (c *PegsChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		for _, peg := range c.pegs {
			delta := b.Position.Minus(peg)
			dist := delta.Magnitude()
			minDist := b.Radius + c.pegRadius
			if dist >= minDist {
				continue
			}
			n := delta.NormalizeOr(Up)
			b.Position = peg.Plus(n.Times(minDist))
			b.Velocity = reflectOffNormal(b.Velocity, n, pegRestitution)
			b.Velocity.X += (rand.Float64() - 0.5) * 40 * c.scale
		}
	}
}

func (c *PegsChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, peg := range c.pegs {
		cv.FillCircle(vp.X+peg.X, vp.Y+peg.Y, c.pegRadius, "#8a93a6", 1)
	}
}

func (c *PegsChamber) State() json.RawMessage {
	return marshalState(c.kind, pegsState{T: c.t, Pegs: c.pegs, PegRadius: c.pegRadius})
}

func (c *PegsChamber) Restore(raw json.RawMessage) error {
	var st pegsState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Pegs != nil {
		c.pegs = st.Pegs
	}
	if st.PegRadius > 0 {
		c.pegRadius = st.PegRadius
	}
	return nil
}
