package sim

import (
	"encoding/json"
	"math"
	"math/rand"
)

// StairsChamber descends a flight of one-way steps across the chamber. Each
// step gets a motion variant at generation time: static, horizontal sweep,
// vertical bob, or a phase-offset oscillation. Booster steps kick harder.
type StairsChamber struct {
	chamberBase
	steps []step
}

type step struct {
	Base    Vec2    `json:"base"` // rest position of the left end
	W       float64 `json:"w"`
	Motion  int     `json:"motion"` // 0 static, 1 horizontal, 2 vertical, 3 phase
	Phase   float64 `json:"phase"`
	Booster bool    `json:"booster"`
	Dir     float64 `json:"dir"` // horizontal nudge direction, ±1
}

const (
	stepMotionStatic = iota
	stepMotionHorizontal
	stepMotionVertical
	stepMotionPhase
)

const (
	stairRestitution        = 0.8
	stairBoosterRestitution = 1.8
)

type stairsState struct {
	T     float64 `json:"t"`
	Steps []step  `json:"steps"`
}

func (c *StairsChamber) Init(w, h float64) {
	count := 4 + rand.Intn(3)
	stepW := w * 0.22
	goingRight := rand.Float64() < 0.5
	c.steps = c.steps[:0]
	for i := 0; i < count; i++ {
		frac := float64(i) / float64(count-1)
		x := frac * (w - stepW)
		dir := 1.0
		if !goingRight {
			x = w - stepW - x
			dir = -1.0
		}
		y := h*0.2 + frac*h*0.6
		c.steps = append(c.steps, step{
			Base:    Vec2{X: x, Y: y},
			W:       stepW,
			Motion:  rand.Intn(4),
			Phase:   rand.Float64() * 2 * math.Pi,
			Booster: rand.Float64() < 0.25,
			Dir:     dir,
		})
	}
}

// position returns the step's animated left end for the chamber clock.
func (s *step) position(t, scale float64) Vec2 {
	amp := 18 * scale
	switch s.Motion {
	case stepMotionHorizontal:
		return Vec2{X: s.Base.X + math.Sin(t*1.2+s.Phase)*amp, Y: s.Base.Y}
	case stepMotionVertical:
		return Vec2{X: s.Base.X, Y: s.Base.Y + math.Sin(t*1.5+s.Phase)*amp}
	case stepMotionPhase:
		return Vec2{
			X: s.Base.X + math.Cos(t+s.Phase)*amp*0.6,
			Y: s.Base.Y + math.Sin(t+s.Phase)*amp*0.6,
		}
	default:
		return s.Base
	}
}

func (c *StairsChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)
	for _, b := range balls {
		if b.Velocity.Y <= 0 {
			continue // one-way: downward landings only
		}
		prevY := b.Position.Y - b.Velocity.Y*dt
		for i := range c.steps {
			s := &c.steps[i]
			pos := s.position(c.t, c.scale)
			if b.Position.X < pos.X || b.Position.X > pos.X+s.W {
				continue
			}
			if b.Position.Y+b.Radius < pos.Y || prevY-b.Radius > pos.Y {
				continue
			}
			b.Position.Y = pos.Y - b.Radius
			rest := stairRestitution
			if s.Booster {
				rest = stairBoosterRestitution
			}
			b.Velocity.Y = -b.Velocity.Y * rest
			b.Velocity.X += s.Dir * 30 * c.scale
			break
		}
	}
}

func (c *StairsChamber) Draw(cv Canvas) {
	vp := c.viewport
	for i := range c.steps {
		s := &c.steps[i]
		pos := s.position(c.t, c.scale)
		color := "#9aa7b8"
		if s.Booster {
			color = "#ffe84d"
		}
		cv.Line(vp.X+pos.X, vp.Y+pos.Y, vp.X+pos.X+s.W, vp.Y+pos.Y, 4*c.scale, color, 1)
	}
}

func (c *StairsChamber) State() json.RawMessage {
	return marshalState(c.kind, stairsState{T: c.t, Steps: c.steps})
}

func (c *StairsChamber) Restore(raw json.RawMessage) error {
	var st stairsState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.Steps != nil {
		c.steps = st.Steps
	}
	return nil
}
