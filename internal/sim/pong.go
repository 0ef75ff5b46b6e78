package sim

import (
	"encoding/json"
	"math/rand"
)

// PongChamber runs a self-playing pong match inside its viewport. It claims
// one ball at a time ("possession"): the Manager suppresses gravity and
// overrides the color on the claimed ball for as long as the chamber tracks
// it, via the possessor interface, and restores both when tracking switches.
//
// The paddles track predictively but imperfectly: each reacts only every so
// often and aims with an injected error, so rallies end. Fast balls are
// caught with a face-crossing sweep over the frame (the tunneling case), slow
// ones with a plain AABB-circle overlap.
type PongChamber struct {
	chamberBase
	leftY, rightY   float64
	leftTarget      float64
	rightTarget     float64
	reactLeft       float64
	reactRight      float64
	leftScore  int
	rightScore int
	trackedID  int
}

const (
	pongPaddleInset  = 18.0 // scaled
	pongPaddleHalfH  = 34.0 // scaled
	pongPaddleW      = 6.0  // scaled
	pongPaddleSpeed  = 260.0
	pongSpinFactor   = 4.0
	pongMinSpeed     = 180.0
	pongMaxSpeed     = 520.0
	pongReactMin     = 0.12
	pongReactMax     = 0.4
	pongPossessColor = "#ffffff"
)

type pongState struct {
	T          float64 `json:"t"`
	LeftY      float64 `json:"left_y"`
	RightY     float64 `json:"right_y"`
	LeftScore  int     `json:"left_score"`
	RightScore int     `json:"right_score"`
	TrackedID  int     `json:"tracked_id"`
}

func (c *PongChamber) Init(w, h float64) {
	c.leftY = h / 2
	c.rightY = h / 2
	c.leftTarget = h / 2
	c.rightTarget = h / 2
	c.trackedID = -1
}

// Possession reports the currently tracked ball for the Manager's
// annotation sweep.
func (c *PongChamber) Possession() (int, string, bool) {
	if c.trackedID < 0 {
		return 0, "", false
	}
	return c.trackedID, pongPossessColor, true
}

func (c *PongChamber) Update(dt float64, balls []*Ball) {
	c.tick(dt)

	tracked := c.retarget(balls)

	// Paddle AI: on reaction timeout, re-aim at the predicted intercept with
	// a random error; between reactions, chase the last target.
	c.reactLeft -= dt
	c.reactRight -= dt
	if tracked != nil {
		if c.reactLeft <= 0 {
			c.leftTarget = c.predictY(tracked, pongPaddleInset*c.scale) + c.aimError()
			c.reactLeft = pongReactMin + rand.Float64()*(pongReactMax-pongReactMin)
		}
		if c.reactRight <= 0 {
			c.rightTarget = c.predictY(tracked, c.w-pongPaddleInset*c.scale) + c.aimError()
			c.reactRight = pongReactMin + rand.Float64()*(pongReactMax-pongReactMin)
		}
	}
	c.leftY = c.chase(c.leftY, c.leftTarget, dt)
	c.rightY = c.chase(c.rightY, c.rightTarget, dt)

	halfH := pongPaddleHalfH * c.scale
	pw := pongPaddleW * c.scale
	leftFace := pongPaddleInset*c.scale + pw
	rightFace := c.w - pongPaddleInset*c.scale - pw

	for _, b := range balls {
		// Top/bottom chamber walls clamp everything in the arena.
		if b.Position.Y < b.Radius && b.Velocity.Y < 0 {
			b.Position.Y = b.Radius
			b.Velocity.Y = -b.Velocity.Y
		} else if b.Position.Y > c.h-b.Radius && b.Velocity.Y > 0 {
			b.Position.Y = c.h - b.Radius
			b.Velocity.Y = -b.Velocity.Y
		}

		c.bounceOffPaddle(b, leftFace, c.leftY, halfH, true, dt)
		c.bounceOffPaddle(b, rightFace, c.rightY, halfH, false, dt)

		// Scoring only applies to the possessed ball; bystanders pass through.
		// The plane is the chamber edge, not edge minus radius: routing stops
		// delivering the ball once it is a full radius outside the viewport,
		// so the goal line must trip while the ball is still delivered.
		if b.ID != c.trackedID {
			continue
		}
		if b.Position.X <= 0 {
			c.rightScore++
			c.serve(b)
		} else if b.Position.X >= c.w {
			c.leftScore++
			c.serve(b)
		}
	}
}

// retarget keeps tracking the claimed ball, or claims a new one when the
// current target left the viewport set.
func (c *PongChamber) retarget(balls []*Ball) *Ball {
	for _, b := range balls {
		if b.ID == c.trackedID {
			return b
		}
	}
	c.trackedID = -1
	for _, b := range balls {
		if b.Active {
			c.trackedID = b.ID
			return b
		}
	}
	return nil
}

// predictY extrapolates the tracked ball to the paddle's x plane, folding
// the trajectory at the chamber's top and bottom walls.
func (c *PongChamber) predictY(b *Ball, faceX float64) float64 {
	if b.Velocity.X == 0 {
		return b.Position.Y
	}
	t := (faceX - b.Position.X) / b.Velocity.X
	if t < 0 {
		return b.Position.Y
	}
	y := b.Position.Y + b.Velocity.Y*t
	period := 2 * c.h
	if period <= 0 {
		return y
	}
	for y < 0 {
		y += period
	}
	for y > period {
		y -= period
	}
	if y > c.h {
		y = period - y
	}
	return y
}

func (c *PongChamber) aimError() float64 {
	return (rand.Float64() - 0.5) * pongPaddleHalfH * c.scale
}

func (c *PongChamber) chase(y, target, dt float64) float64 {
	maxStep := pongPaddleSpeed * c.scale * dt
	diff := target - y
	if diff > maxStep {
		diff = maxStep
	} else if diff < -maxStep {
		diff = -maxStep
	}
	return clamp(y+diff, pongPaddleHalfH*c.scale, c.h-pongPaddleHalfH*c.scale)
}

// bounceOffPaddle handles one paddle. For fast balls the face-crossing test
// compares the pre- and post-integration x against the face plane; for slow
// balls a plain overlap check catches contacts the sweep misses.
func (c *PongChamber) bounceOffPaddle(b *Ball, faceX, paddleY, halfH float64, isLeft bool, dt float64) {
	if isLeft && b.Velocity.X >= 0 {
		return
	}
	if !isLeft && b.Velocity.X <= 0 {
		return
	}
	prevX := b.Position.X - b.Velocity.X*dt

	crossed := false
	if isLeft {
		crossed = prevX-b.Radius >= faceX && b.Position.X-b.Radius <= faceX
	} else {
		crossed = prevX+b.Radius <= faceX && b.Position.X+b.Radius >= faceX
	}
	if !crossed {
		// Slow-ball fallback: direct overlap with the paddle box.
		dx := b.Position.X - faceX
		if isLeft && (dx < -b.Radius || dx > b.Radius) {
			return
		}
		if !isLeft && (dx > b.Radius || dx < -b.Radius) {
			return
		}
	}
	offset := b.Position.Y - paddleY
	if offset < -halfH-b.Radius || offset > halfH+b.Radius {
		return
	}

	if isLeft {
		b.Position.X = faceX + b.Radius
	} else {
		b.Position.X = faceX - b.Radius
	}
	b.Velocity.X = -b.Velocity.X
	b.Velocity.Y += offset * pongSpinFactor

	// Speed floor and ceiling keep the rally playable.
	speed := b.Velocity.Magnitude()
	minS := pongMinSpeed * c.scale
	maxS := pongMaxSpeed * c.scale
	if speed > 0 && speed < minS {
		b.Velocity = b.Velocity.Times(minS / speed)
	} else if speed > maxS {
		b.Velocity = b.Velocity.Times(maxS / speed)
	}
}

// serve resets the possessed ball to the arena center with a randomized
// outgoing velocity.
func (c *PongChamber) serve(b *Ball) {
	b.Position = Vec2{X: c.w / 2, Y: c.h / 2}
	vx := (pongMinSpeed + rand.Float64()*120) * c.scale
	if rand.Float64() < 0.5 {
		vx = -vx
	}
	b.Velocity = Vec2{X: vx, Y: (rand.Float64() - 0.5) * 160 * c.scale}
}

func (c *PongChamber) Draw(cv Canvas) {
	vp := c.viewport
	halfH := pongPaddleHalfH * c.scale
	pw := pongPaddleW * c.scale
	lx := vp.X + pongPaddleInset*c.scale
	rx := vp.X + c.w - pongPaddleInset*c.scale - pw
	cv.FillRect(lx, vp.Y+c.leftY-halfH, pw, halfH*2, "#e8e8e8", 1)
	cv.FillRect(rx, vp.Y+c.rightY-halfH, pw, halfH*2, "#e8e8e8", 1)
	cv.Line(vp.X+c.w/2, vp.Y, vp.X+c.w/2, vp.Y+c.h, 1, "#555f6e", 0.5)
}

func (c *PongChamber) State() json.RawMessage {
	return marshalState(c.kind, pongState{
		T: c.t, LeftY: c.leftY, RightY: c.rightY,
		LeftScore: c.leftScore, RightScore: c.rightScore,
		TrackedID: c.trackedID,
	})
}

func (c *PongChamber) Restore(raw json.RawMessage) error {
	var st pongState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	c.t = st.T
	if st.LeftY > 0 {
		c.leftY = st.LeftY
		c.leftTarget = st.LeftY
	}
	if st.RightY > 0 {
		c.rightY = st.RightY
		c.rightTarget = st.RightY
	}
	c.leftScore = st.LeftScore
	c.rightScore = st.RightScore
	c.trackedID = st.TrackedID
	if c.trackedID == 0 {
		// Distinguish "never tracked" from ball 0 is impossible after a
		// legacy blob without the field; ball IDs start at 1 so 0 means unset.
		c.trackedID = -1
	}
	return nil
}
