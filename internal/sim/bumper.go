package sim

import (
	"encoding/json"
	"math/rand"
)

// BumperChamber holds a few pinball bumpers: static circles with restitution
// above pegs, plus a decaying flash timer per bumper that only the renderer
// cares about.
type BumperChamber struct {
	chamberBase
	bumpers []bumper
}

type bumper struct {
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	Flash  float64 `json:"flash"`
}

const bumperRestitution = 2.0

type bumperState struct {
	T       float64  `json:"t"`
	Bumpers []bumper `json:"bumpers"`
}

func (c *BumperChamber) Init(w, h float64) {
	count := 2 + rand.Intn(3)
	radius := 22 * c.scale
	var centers []Vec2
	c.bumpers = c.bumpers[:0]
	for i := 0; i < count; i++ {
		p, ok := placeNonOverlapping(w, h, radius*2.5, radius*4, centers)
		if !ok {
			break
		}
		centers = append(centers, p)
		c.bumpers = append(c.bumpers, bumper{Pos: p, Radius: radius})
	}
}

func (c *BumperChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for i := range c.bumpers {
		if c.bumpers[i].Flash > 0 {
			c.bumpers[i].Flash -= dt * 4
			if c.bumpers[i].Flash < 0 {
				c.bumpers[i].Flash = 0
			}
		}
	}
	for _, b := range balls {
		for i := range c.bumpers {
			bp := &c.bumpers[i]
			delta := b.Position.Minus(bp.Pos)
			dist := delta.Magnitude()
			minDist := b.Radius + bp.Radius
			if dist >= minDist {
				continue
			}
			n := delta.NormalizeOr(Up)
			b.Position = bp.Pos.Plus(n.Times(minDist))
			b.Velocity = reflectOffNormal(b.Velocity, n, bumperRestitution)
			bp.Flash = 1
		}
	}
}

func (c *BumperChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, bp := range c.bumpers {
		cv.FillCircle(vp.X+bp.Pos.X, vp.Y+bp.Pos.Y, bp.Radius, "#d44e6e", 1)
		if bp.Flash > 0 {
			cv.StrokeCircle(vp.X+bp.Pos.X, vp.Y+bp.Pos.Y, bp.Radius+4*c.scale, 2, "#ffffff", bp.Flash)
		}
	}
}

func (c *BumperChamber) State() json.RawMessage {
	return marshalState(c.kind, bumperState{T: c.t, Bumpers: c.bumpers})
}

func (c *BumperChamber) Restore(raw json.RawMessage) error {
	var st bumperState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Bumpers != nil {
		c.bumpers = st.Bumpers
	}
	return nil
}
