package sim

import "math/rand"

// Ball is a moving circular body in global canvas coordinates.
//
// NoGravity and ColorOverride are transient chamber annotations. The Manager
// owns them: it queries possessing chambers every frame and clears the flags
// on any ball no chamber claims, so a chamber never has to find a ball it
// stopped tracking.
type Ball struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Color    string  `json:"color"`
	Active   bool    `json:"active"`

	NoGravity     bool   `json:"no_gravity,omitempty"`
	ColorOverride string `json:"color_override,omitempty"`
}

// DisplayColor returns the color a renderer should use.
func (b *Ball) DisplayColor() string {
	if b.ColorOverride != "" {
		return b.ColorOverride
	}
	return b.Color
}

func randomBallColor() string {
	return ballPalette[rand.Intn(len(ballPalette))]
}
