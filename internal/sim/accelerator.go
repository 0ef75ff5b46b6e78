package sim

import (
	"encoding/json"
	"math"
	"math/rand"
)

// AcceleratorChamber scatters a few rectangular boost pads, each pushing in
// its own random direction for as long as a ball's bounding box overlaps it.
type AcceleratorChamber struct {
	chamberBase
	pads []accelPad
}

type accelPad struct {
	Zone  Rect    `json:"zone"`
	Dir   Vec2    `json:"dir"` // unit direction
	Accel float64 `json:"accel"`
}

type acceleratorState struct {
	T    float64    `json:"t"`
	Pads []accelPad `json:"pads"`
}

func (c *AcceleratorChamber) Init(w, h float64) {
	count := 3 + rand.Intn(3)
	c.pads = c.pads[:0]
	var centers []Vec2
	for i := 0; i < count; i++ {
		pw := (60 + rand.Float64()*60) * c.scale
		ph := (40 + rand.Float64()*40) * c.scale
		center, ok := placeNonOverlapping(w, h, math.Max(pw, ph)/2+8*c.scale, math.Max(pw, ph)*1.2, centers)
		if !ok {
			break
		}
		centers = append(centers, center)
		angle := rand.Float64() * 2 * math.Pi
		c.pads = append(c.pads, accelPad{
			Zone:  Rect{X: center.X - pw/2, Y: center.Y - ph/2, W: pw, H: ph},
			Dir:   Vec2{X: math.Cos(angle), Y: math.Sin(angle)},
			Accel: (500 + rand.Float64()*300) * c.scale,
		})
	}
}

func (c *AcceleratorChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		for _, pad := range c.pads {
			if !pad.Zone.OverlapsCircle(b.Position, b.Radius) {
				continue
			}
			b.Velocity = b.Velocity.Plus(pad.Dir.Times(pad.Accel * dt))
		}
	}
}

func (c *AcceleratorChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, pad := range c.pads {
		cv.FillRect(vp.X+pad.Zone.X, vp.Y+pad.Zone.Y, pad.Zone.W, pad.Zone.H, "#6e8bff", 0.3)
		center := pad.Zone.Center()
		tip := center.Plus(pad.Dir.Times(math.Min(pad.Zone.W, pad.Zone.H) * 0.4))
		cv.Line(vp.X+center.X, vp.Y+center.Y, vp.X+tip.X, vp.Y+tip.Y, 2, "#aab8ff", 0.9)
	}
}

func (c *AcceleratorChamber) State() json.RawMessage {
	return marshalState(c.kind, acceleratorState{T: c.t, Pads: c.pads})
}

func (c *AcceleratorChamber) Restore(raw json.RawMessage) error {
	var st acceleratorState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Pads != nil {
		c.pads = st.Pads
	}
	return nil
}
