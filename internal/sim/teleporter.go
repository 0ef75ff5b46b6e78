package sim

import (
	"encoding/json"
	"math/rand"
)

// TeleporterChamber links portals in pairs. A ball entering a portal's
// radius pops out of its partner, displaced along its incoming velocity so
// it clears the exit, and goes on a short cooldown so it can't ping-pong
// between the pair every frame.
type TeleporterChamber struct {
	chamberBase
	portals   []portal
	cooldowns map[int]float64 // ball ID -> seconds remaining
}

type portal struct {
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	Target int     `json:"target"` // index of the paired portal
}

const teleportCooldown = 0.8 // seconds

type teleporterState struct {
	T         float64         `json:"t"`
	Portals   []portal        `json:"portals"`
	Cooldowns map[int]float64 `json:"cooldowns,omitempty"`
}

func (c *TeleporterChamber) Init(w, h float64) {
	pairs := 2 + rand.Intn(2)
	radius := 16 * c.scale
	var centers []Vec2
	c.portals = c.portals[:0]
	for i := 0; i < pairs; i++ {
		a, ok := placeNonOverlapping(w, h, radius*2.5, radius*5, centers)
		if !ok {
			break
		}
		centers = append(centers, a)
		b, ok := placeNonOverlapping(w, h, radius*2.5, radius*5, centers)
		if !ok {
			break
		}
		centers = append(centers, b)
		idx := len(c.portals)
		c.portals = append(c.portals,
			portal{Pos: a, Radius: radius, Target: idx + 1},
			portal{Pos: b, Radius: radius, Target: idx},
		)
	}
	c.cooldowns = make(map[int]float64)
}

func (c *TeleporterChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	if c.cooldowns == nil {
		c.cooldowns = make(map[int]float64)
	}
	for id, remaining := range c.cooldowns {
		remaining -= dt
		if remaining <= 0 {
			delete(c.cooldowns, id)
		} else {
			c.cooldowns[id] = remaining
		}
	}
	for _, b := range balls {
		if _, onCooldown := c.cooldowns[b.ID]; onCooldown {
			continue
		}
		for _, p := range c.portals {
			if p.Target < 0 || p.Target >= len(c.portals) {
				continue
			}
			if b.Position.Minus(p.Pos).Magnitude() >= p.Radius {
				continue
			}
			target := c.portals[p.Target]
			// Exit displaced along the travel direction, or straight down
			// for a near-stationary ball.
			dir := b.Velocity.NormalizeOr(Vec2{Y: 1})
			b.Position = target.Pos.Plus(dir.Times(target.Radius + b.Radius))
			c.cooldowns[b.ID] = teleportCooldown
			break
		}
	}
}

func (c *TeleporterChamber) Draw(cv Canvas) {
	vp := c.viewport
	colors := []string{"#c86eff", "#5dd7ff", "#ffb84d"}
	for i, p := range c.portals {
		color := colors[(i/2)%len(colors)]
		cv.StrokeCircle(vp.X+p.Pos.X, vp.Y+p.Pos.Y, p.Radius, 3*c.scale, color, 1)
	}
}

func (c *TeleporterChamber) State() json.RawMessage {
	return marshalState(c.kind, teleporterState{T: c.t, Portals: c.portals, Cooldowns: c.cooldowns})
}

func (c *TeleporterChamber) Restore(raw json.RawMessage) error {
	var st teleporterState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Portals != nil {
		c.portals = st.Portals
	}
	if st.Cooldowns != nil {
		c.cooldowns = st.Cooldowns
	} else if c.cooldowns == nil {
		c.cooldowns = make(map[int]float64)
	}
	return nil
}
