package sim

import (
	"encoding/json"
	"math"
	"math/rand"
)

// AntigravityChamber floats balls inside a few randomized lift zones: a
// steady upward force cancels most of gravity, falling speed is damped, and
// a slow sinusoidal drift pushes the occupants side to side. Balls drifting
// against the chamber's side walls while lifted get a soft bounce back in.
type AntigravityChamber struct {
	chamberBase
	zones []liftZone
}

type liftZone struct {
	Zone       Rect    `json:"zone"`
	Lift       float64 `json:"lift"`        // upward acceleration, px/s^2
	DriftPhase float64 `json:"drift_phase"`
}

const (
	antigravLiftFactor = 0.7 // fraction of gravity cancelled (plus a bit of float)
	antigravDamping    = 2.0 // 1/s on downward speed
)

type antigravState struct {
	T     float64    `json:"t"`
	Zones []liftZone `json:"zones"`
}

func (c *AntigravityChamber) Init(w, h float64) {
	count := 2 + rand.Intn(2)
	c.zones = c.zones[:0]
	var centers []Vec2
	for i := 0; i < count; i++ {
		zw := (90 + rand.Float64()*70) * c.scale
		zh := (70 + rand.Float64()*60) * c.scale
		center, ok := placeNonOverlapping(w, h, math.Max(zw, zh)/2+6*c.scale, math.Max(zw, zh)*1.1, centers)
		if !ok {
			break
		}
		centers = append(centers, center)
		c.zones = append(c.zones, liftZone{
			Zone:       Rect{X: center.X - zw/2, Y: center.Y - zh/2, W: zw, H: zh},
			Lift:       Gravity * antigravLiftFactor,
			DriftPhase: rand.Float64() * 2 * math.Pi,
		})
	}
}

func (c *AntigravityChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		lifted := false
		for _, z := range c.zones {
			if !z.Zone.Contains(b.Position) {
				continue
			}
			lifted = true
			b.Velocity.Y -= z.Lift * dt
			if b.Velocity.Y > 0 {
				b.Velocity.Y *= 1 - math.Min(antigravDamping*dt, 1)
			}
			b.Velocity.X += math.Sin(c.t*0.8+z.DriftPhase) * 60 * c.scale * dt
		}
		if !lifted {
			continue
		}
		// Soft side-wall bounce while floating.
		if b.Position.X < b.Radius && b.Velocity.X < 0 {
			b.Velocity.X = -b.Velocity.X * 0.5
		} else if b.Position.X > c.w-b.Radius && b.Velocity.X > 0 {
			b.Velocity.X = -b.Velocity.X * 0.5
		}
	}
}

func (c *AntigravityChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, z := range c.zones {
		cv.FillRect(vp.X+z.Zone.X, vp.Y+z.Zone.Y, z.Zone.W, z.Zone.H, "#6effd2", 0.18)
	}
}

func (c *AntigravityChamber) State() json.RawMessage {
	return marshalState(c.kind, antigravState{T: c.t, Zones: c.zones})
}

func (c *AntigravityChamber) Restore(raw json.RawMessage) error {
	var st antigravState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Zones != nil {
		c.zones = st.Zones
	}
	return nil
}
