package sim

import (
	"encoding/json"
	"math/rand"
)

// TeslaCoilChamber has two coils that accumulate charge over time. A charged
// coil discharges into any ball that drifts close enough, kicking it radially
// outward and resetting the charge. The coil core is solid and bounces.
type TeslaCoilChamber struct {
	chamberBase
	coils []coil
}

type coil struct {
	Pos        Vec2    `json:"pos"`
	CoreRadius float64 `json:"core_radius"`
	ZapRadius  float64 `json:"zap_radius"`
	Charge     float64 `json:"charge"`
	ChargeRate float64 `json:"charge_rate"`
}

const teslaCoreRestitution = 1.5

type teslaState struct {
	T     float64 `json:"t"`
	Coils []coil  `json:"coils"`
}

func (c *TeslaCoilChamber) Init(w, h float64) {
	core := 13 * c.scale
	var centers []Vec2
	c.coils = c.coils[:0]
	for i := 0; i < 2; i++ {
		p, ok := placeNonOverlapping(w, h, core*5, core*9, centers)
		if !ok {
			break
		}
		centers = append(centers, p)
		c.coils = append(c.coils, coil{
			Pos:        p,
			CoreRadius: core,
			ZapRadius:  core * 5,
			Charge:     rand.Float64(),
			ChargeRate: 0.35 + rand.Float64()*0.3,
		})
	}
}

func (c *TeslaCoilChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for i := range c.coils {
		c.coils[i].Charge += c.coils[i].ChargeRate * dt
	}
	for _, b := range balls {
		for i := range c.coils {
			co := &c.coils[i]
			delta := b.Position.Minus(co.Pos)
			dist := delta.Magnitude()

			minDist := b.Radius + co.CoreRadius
			if dist < minDist {
				n := delta.NormalizeOr(Up)
				b.Position = co.Pos.Plus(n.Times(minDist))
				b.Velocity = reflectOffNormal(b.Velocity, n, teslaCoreRestitution)
				continue
			}

			if co.Charge >= 1 && dist < co.ZapRadius {
				n := delta.NormalizeOr(Up)
				impulse := 420 * c.scale
				b.Velocity = b.Velocity.Plus(n.Times(impulse))
				co.Charge = 0
			}
		}
	}
}

func (c *TeslaCoilChamber) Draw(cv Canvas) {
	vp := c.viewport
	for _, co := range c.coils {
		cv.FillCircle(vp.X+co.Pos.X, vp.Y+co.Pos.Y, co.CoreRadius, "#c0c8ff", 1)
		glow := clamp(co.Charge, 0, 1)
		cv.StrokeCircle(vp.X+co.Pos.X, vp.Y+co.Pos.Y, co.ZapRadius, 1, "#8f9cff", 0.15+0.35*glow)
	}
}

func (c *TeslaCoilChamber) State() json.RawMessage {
	return marshalState(c.kind, teslaState{T: c.t, Coils: c.coils})
}

func (c *TeslaCoilChamber) Restore(raw json.RawMessage) error {
	var st teslaState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Coils != nil {
		c.coils = st.Coils
	}
	return nil
}
