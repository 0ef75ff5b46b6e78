package sim

import (
	"math"
	"testing"
)

// bareManager returns a manager with no chambers and spawning effectively
// disabled, for isolating the global pipeline steps.
func bareManager(w, h float64) *Manager {
	m := New()
	m.W = w
	m.H = h
	m.SpawnInterval = 1e9
	return m
}

func addBall(m *Manager, x, y, vx, vy float64) *Ball {
	b := &Ball{
		ID:       m.NextBallID,
		Position: Vec2{X: x, Y: y},
		Velocity: Vec2{X: vx, Y: vy},
		Radius:   DefaultBallRadius,
		Color:    "#ffffff",
		Active:   true,
	}
	m.NextBallID++
	m.Balls = append(m.Balls, b)
	return b
}

func TestFreeFallMatchesAnalyticEuler(t *testing.T) {
	m := bareManager(10000, 100000)
	b := addBall(m, 5000, 100, 30, 0)

	const dt = 1.0 / 60
	const steps = 120
	x0, y0 := b.Position.X, b.Position.Y
	vx0, vy0 := b.Velocity.X, b.Velocity.Y

	for i := 0; i < steps; i++ {
		m.Update(dt)
	}

	// Semi-implicit Euler closed form over N steps:
	// vy_N = vy0 + N*g*dt, y_N = y0 + N*vy0*dt + g*dt^2 * N(N+1)/2.
	n := float64(steps)
	wantVy := vy0 + n*Gravity*dt
	wantY := y0 + n*vy0*dt + Gravity*dt*dt*n*(n+1)/2
	wantX := x0 + n*vx0*dt

	if math.Abs(b.Velocity.Y-wantVy) > 1e-6 {
		t.Errorf("vy after %d steps = %f, want %f", steps, b.Velocity.Y, wantVy)
	}
	if math.Abs(b.Position.Y-wantY) > 1e-6 {
		t.Errorf("y after %d steps = %f, want %f", steps, b.Position.Y, wantY)
	}
	if math.Abs(b.Position.X-wantX) > 1e-6 {
		t.Errorf("x after %d steps = %f, want %f", steps, b.Position.X, wantX)
	}
	if math.Abs(b.Velocity.X-vx0) > 1e-12 {
		t.Errorf("vx changed during free fall: %f", b.Velocity.X)
	}
}

func TestHeadOnCollisionExchangesVelocities(t *testing.T) {
	m := bareManager(1000, 100000)
	r := DefaultBallRadius
	// Slightly overlapping, approaching head-on at equal and opposite speed.
	a := addBall(m, 500-r+1, 500, 120, 0)
	b := addBall(m, 500+r-1, 500, -120, 0)

	m.Update(1.0 / 60)

	if a.Velocity.X >= 0 {
		t.Errorf("left ball should reverse: vx=%f", a.Velocity.X)
	}
	if b.Velocity.X <= 0 {
		t.Errorf("right ball should reverse: vx=%f", b.Velocity.X)
	}
	if math.Abs(a.Velocity.X+120) > 1e-9 || math.Abs(b.Velocity.X-120) > 1e-9 {
		t.Errorf("elastic exchange expected ±120, got %f and %f", a.Velocity.X, b.Velocity.X)
	}
	dist := b.Position.Minus(a.Position).Magnitude()
	if dist < 2*r-1e-9 {
		t.Errorf("balls still overlap after resolution: dist=%f", dist)
	}
}

func TestSeparatingContactIsNotCorrected(t *testing.T) {
	m := bareManager(1000, 100000)
	r := DefaultBallRadius
	a := addBall(m, 500-r+1, 500, -50, 0)
	b := addBall(m, 500+r-1, 500, 50, 0)

	m.Update(1.0 / 60)

	if a.Velocity.X != -50 || b.Velocity.X != 50 {
		t.Errorf("separating pair should keep velocities, got %f and %f", a.Velocity.X, b.Velocity.X)
	}
}

func TestRightEdgeClampAndDamping(t *testing.T) {
	m := bareManager(800, 100000)
	b := addBall(m, 800, 500, 200, 0)

	m.Update(1.0 / 60)

	if b.Position.X != 800-b.Radius {
		t.Errorf("x should clamp to w-r: got %f", b.Position.X)
	}
	want := -200 * WallDamping
	if math.Abs(b.Velocity.X-want) > 1e-9 {
		t.Errorf("vx after right edge = %f, want %f", b.Velocity.X, want)
	}
}

func TestBottomExitDespawnsAndReplaces(t *testing.T) {
	m := bareManager(800, 600)
	m.MaxBalls = 4
	b := addBall(m, 400, 650, 0, 100)
	gone := b.ID

	m.Update(1.0 / 60)

	if len(m.Balls) != 1 {
		t.Fatalf("expected replacement spawn, population=%d", len(m.Balls))
	}
	if m.Balls[0].ID == gone {
		t.Errorf("despawned ball ID %d still present", gone)
	}
	if !m.Balls[0].Active {
		t.Errorf("replacement ball should be active")
	}
}

func TestPopulationBoundAndIDUniqueness(t *testing.T) {
	m := New()
	m.Init(1920, 1080)
	m.SpawnInterval = 0.05 // aggressive spawning

	for i := 0; i < 600; i++ {
		m.Update(1.0 / 60)
		if len(m.Balls) > m.MaxBalls {
			t.Fatalf("population %d exceeds cap %d at step %d", len(m.Balls), m.MaxBalls, i)
		}
		seen := make(map[int]bool, len(m.Balls))
		for _, b := range m.Balls {
			if seen[b.ID] {
				t.Fatalf("duplicate active ball ID %d at step %d", b.ID, i)
			}
			seen[b.ID] = true
		}
	}
}

func TestChamberConstructionFailureIsSkipped(t *testing.T) {
	m := New()
	m.W, m.H = 1920, 1080
	m.buildChambers([]ChamberKind{KindPegs, ChamberKind("bogus"), KindFunnel})
	if len(m.Chambers) != 2 {
		t.Fatalf("expected 2 surviving chambers, got %d", len(m.Chambers))
	}
	m.layoutChambers(true)
	m.Update(1.0 / 60) // must not panic with the reduced set
}

func TestUpdateRoutesBallIntoChamberLocally(t *testing.T) {
	m := bareManager(960, 540)
	ch := &TrampolineChamber{chamberBase: newBase(KindTrampoline)}
	// Right half of the canvas.
	ch.SetViewport(Rect{X: 480, Y: 0, W: 480, H: 270})
	ch.Init(480, 270)
	m.Chambers = []Chamber{ch}

	// Ball falling onto the pad: pad is at local y=210.6, global same, with
	// the viewport offset on x.
	padY := ch.pad.A.Y
	b := addBall(m, 480+240, padY-DefaultBallRadius-1, 0, 250)

	m.Update(1.0 / 60)

	if b.Velocity.Y >= 0 {
		t.Errorf("ball should bounce upward off the pad, vy=%f", b.Velocity.Y)
	}
	if b.Position.X < 480 {
		t.Errorf("write-back lost the viewport offset: x=%f", b.Position.X)
	}
}

func TestPongScoringFiresThroughRouting(t *testing.T) {
	m := bareManager(960, 540)
	ch := &PongChamber{chamberBase: newBase(KindPong)}
	// Right half of the canvas, so local and global x differ.
	ch.SetViewport(Rect{X: 480, Y: 0, W: 480, H: 270})
	ch.Init(480, 270)
	m.Chambers = []Chamber{ch}

	// The ball flies left well above the paddle's reach, crossing the goal
	// line at a speed where every frame still overlaps the viewport.
	b := addBall(m, 480+40, 220, -480, 0)

	for i := 0; i < 120 && ch.rightScore == 0; i++ {
		m.Update(1.0 / 60)
	}

	if ch.rightScore != 1 {
		t.Fatalf("ball crossed behind the left paddle but right side never scored (pos=%v)", b.Position)
	}
	if ch.trackedID != b.ID {
		t.Errorf("possession should survive the score, tracked=%d", ch.trackedID)
	}
	if b.Position.X != 480+240 || b.Position.Y != 135 {
		t.Errorf("serve should reset to the viewport center, got (%f,%f)", b.Position.X, b.Position.Y)
	}
	if b.Velocity.IsZero() {
		t.Errorf("serve should have an outgoing velocity")
	}
}
