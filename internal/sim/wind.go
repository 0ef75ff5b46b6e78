package sim

import (
	"encoding/json"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// WindTunnelChamber blows balls sideways inside two horizontal bands. The
// base acceleration is constant per band; a slow Perlin walk over the chamber
// clock gusts it up and down so the tunnel breathes instead of humming.
type WindTunnelChamber struct {
	chamberBase
	bands  []windBand
	noises []*perlin.Perlin
}

type windBand struct {
	Zone  Rect    `json:"zone"`
	Accel float64 `json:"accel"` // signed horizontal acceleration, px/s^2
	Seed  int64   `json:"seed"`
}

type windState struct {
	T     float64    `json:"t"`
	Bands []windBand `json:"bands"`
}

func (c *WindTunnelChamber) Init(w, h float64) {
	bandH := h * 0.22
	base := 420 * c.scale
	c.bands = []windBand{
		{Zone: Rect{X: 0, Y: h * 0.18, W: w, H: bandH}, Accel: base, Seed: rand.Int63()},
		{Zone: Rect{X: 0, Y: h * 0.58, W: w, H: bandH}, Accel: -base, Seed: rand.Int63()},
	}
	c.rebuildNoise()
}

// rebuildNoise gives every band its own generator from its serialized seed,
// so each band gusts on an independent curve and a restore replays all of
// them.
func (c *WindTunnelChamber) rebuildNoise() {
	c.noises = c.noises[:0]
	for _, band := range c.bands {
		c.noises = append(c.noises, perlin.NewPerlin(2, 2, 3, band.Seed))
	}
}

func (c *WindTunnelChamber) gust(bandIdx int) float64 {
	if bandIdx < 0 || bandIdx >= len(c.noises) {
		return 1
	}
	// Noise1D sits roughly in [-1, 1]; keep the gust factor positive.
	n := c.noises[bandIdx].Noise1D(c.t * 0.25)
	return 1 + 0.5*n
}

func (c *WindTunnelChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		for i, band := range c.bands {
			if !band.Zone.Contains(b.Position) {
				continue
			}
			b.Velocity.X += band.Accel * c.gust(i) * dt
		}
	}
}

func (c *WindTunnelChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, band := range c.bands {
		cv.FillRect(vp.X+band.Zone.X, vp.Y+band.Zone.Y, band.Zone.W, band.Zone.H, "#3d5a80", 0.25)
	}
}

func (c *WindTunnelChamber) State() json.RawMessage {
	return marshalState(c.kind, windState{T: c.t, Bands: c.bands})
}

func (c *WindTunnelChamber) Restore(raw json.RawMessage) error {
	var st windState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Bands != nil {
		c.bands = st.Bands
	}
	c.rebuildNoise()
	return nil
}
