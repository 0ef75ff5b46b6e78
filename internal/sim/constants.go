package sim

// Physics constants for the chamber toy. Obstacle geometry and force
// magnitudes inside chambers are scaled by the chamber's scale factor so a
// dense grid behaves like a sparse one.

const (
	Gravity     = 520.0 // px/s^2, global, applied once per ball per frame
	WallDamping = 0.8   // velocity retained on canvas edge bounce

	// Reference chamber size. scale = min(w/RefChamberW, h/RefChamberH).
	RefChamberW = 480.0
	RefChamberH = 270.0

	DefaultBallRadius    = 9.0
	DefaultMaxBalls      = 24
	DefaultSpawnBurst    = 8
	DefaultSpawnInterval = 1.5 // seconds

	// Random obstacle placement gives up after this many attempts and the
	// chamber runs with fewer obstacles than requested.
	PlacementAttempts = 200
)

// ballPalette is sampled randomly for spawned balls.
var ballPalette = []string{
	"#ff5d5d", "#ffb84d", "#ffe84d", "#7dff6e",
	"#5dd7ff", "#6e8bff", "#c86eff", "#ff6ed2",
}
