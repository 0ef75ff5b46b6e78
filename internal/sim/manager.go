package sim

import (
	"log"
	"math/rand"
	"sync"
)

// Manager owns the ball population and the chamber list and drives the
// per-frame pipeline: spawn timing, global gravity, chamber routing,
// ball-ball resolution, canvas boundaries, cleanup. It is the only writer of
// canonical ball state; chambers see transient local copies.
//
// The mutex exists for the service around the core: the tick loop writes
// while HTTP and websocket readers snapshot concurrently. Within one Update
// call everything is single-threaded and order-dependent on chamber-list
// order, deliberately so.
type Manager struct {
	W, H float64

	Balls    []*Ball
	Chambers []Chamber

	NextBallID    int
	SpawnTimer    float64
	SpawnInterval float64
	MaxBalls      int
	Cols, Rows    int
	T             float64

	mu sync.RWMutex
}

// New constructs an empty, unconfigured Manager. Call Init or Restore before
// Update.
func New() *Manager {
	return &Manager{
		NextBallID:    1,
		SpawnInterval: DefaultSpawnInterval,
		MaxBalls:      DefaultMaxBalls,
	}
}

// Init performs first-time construction: shuffle the chamber kinds, lay out
// the grid, generate every chamber's obstacles, and spawn the initial burst.
func (m *Manager) Init(canvasW, canvasH float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.W = canvasW
	m.H = canvasH

	order := make([]ChamberKind, len(AllKinds))
	copy(order, AllKinds)
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	m.buildChambers(order)
	m.layoutChambers(true)

	for i := 0; i < DefaultSpawnBurst && len(m.Balls) < m.MaxBalls; i++ {
		m.spawnBall()
	}
	log.Printf("[SIM] initialized %.0fx%.0f canvas, %d chambers (%dx%d grid), %d balls",
		canvasW, canvasH, len(m.Chambers), m.Cols, m.Rows, len(m.Balls))
}

// buildChambers constructs chambers in the given order, skipping (with a
// log line) any kind that fails to construct. Never fatal.
func (m *Manager) buildChambers(order []ChamberKind) {
	m.Chambers = m.Chambers[:0]
	for _, kind := range order {
		ch, err := NewChamber(kind)
		if err != nil {
			log.Printf("[SIM] skipping chamber %q: %v", kind, err)
			continue
		}
		m.Chambers = append(m.Chambers, ch)
	}
}

// layoutChambers derives the grid from the surviving chamber count (or keeps
// restored cols/rows), assigns viewports, and optionally runs procedural
// generation. Restore passes generate=false: geometry comes from blobs.
func (m *Manager) layoutChambers(generate bool) {
	count := len(m.Chambers)
	if m.Cols <= 0 || m.Rows <= 0 || m.Cols*m.Rows < count {
		m.Cols, m.Rows = GridFor(count)
	}
	viewports := Viewports(m.W, m.H, m.Cols, m.Rows, count)
	for i, ch := range m.Chambers {
		ch.SetViewport(viewports[i])
		if generate {
			ch.Init(viewports[i].W, viewports[i].H)
		}
	}
}

// Update advances the simulation one frame. Steps run in strict order; see
// the pipeline comments. dt is in seconds.
func (m *Manager) Update(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. Clocks and timed spawning.
	m.T += dt
	m.SpawnTimer += dt
	if m.SpawnTimer >= m.SpawnInterval {
		if len(m.Balls) < m.MaxBalls {
			m.spawnBall()
		}
		m.SpawnTimer = 0
	}

	// Possession sweep: chambers that claim a ball get gravity suppressed
	// and the color overridden on it; every unclaimed ball is restored.
	m.syncPossessions()

	// 2. Global integration, exactly once per active ball, before any
	// chamber sees it. Semi-implicit Euler.
	for _, b := range m.Balls {
		if !b.Active {
			continue
		}
		if !b.NoGravity {
			b.Velocity.Y += Gravity * dt
		}
		b.Position = b.Position.Plus(b.Velocity.Times(dt))
	}

	// 3. Chamber routing, sequentially in list order. Each chamber sees the
	// already-updated global state from chambers before it; a ball
	// straddling two viewports is resolved against them one after the
	// other, not simultaneously.
	local := make([]*Ball, 0, len(m.Balls))
	refs := make([]*Ball, 0, len(m.Balls))
	for _, ch := range m.Chambers {
		vp := ch.Viewport()
		local = local[:0]
		refs = refs[:0]
		for _, b := range m.Balls {
			if !b.Active || !vp.OverlapsCircle(b.Position, b.Radius) {
				continue
			}
			work := *b
			work.Position.X -= vp.X
			work.Position.Y -= vp.Y
			local = append(local, &work)
			refs = append(refs, b)
		}
		if len(local) == 0 {
			// Chambers with animated obstacles still advance their clock.
			ch.Update(dt, nil)
			continue
		}
		ch.Update(dt, local)
		for i, w := range local {
			b := refs[i]
			b.Position = Vec2{X: w.Position.X + vp.X, Y: w.Position.Y + vp.Y}
			b.Velocity = w.Velocity
			b.Active = w.Active
		}
	}

	// 4. Ball-ball collisions, O(n^2) over the capped population.
	m.resolveBallCollisions()

	// 5. Canvas boundaries: side and top bounce with damping, bottom kills.
	for _, b := range m.Balls {
		if !b.Active {
			continue
		}
		if b.Position.X < b.Radius {
			b.Position.X = b.Radius
			b.Velocity.X = absFloat(b.Velocity.X) * WallDamping
		} else if b.Position.X > m.W-b.Radius {
			b.Position.X = m.W - b.Radius
			b.Velocity.X = -absFloat(b.Velocity.X) * WallDamping
		}
		if b.Position.Y < b.Radius {
			b.Position.Y = b.Radius
			b.Velocity.Y = absFloat(b.Velocity.Y) * WallDamping
		} else if b.Position.Y-b.Radius > m.H {
			b.Active = false
		}
	}

	// 6. Cleanup: drop the dead, refill up to the cap.
	m.removeInactive()
}

// syncPossessions applies chamber ball claims as Manager-owned annotations.
func (m *Manager) syncPossessions() {
	type claim struct{ color string }
	claims := make(map[int]claim)
	for _, ch := range m.Chambers {
		if p, ok := ch.(possessor); ok {
			if id, color, ok := p.Possession(); ok {
				claims[id] = claim{color: color}
			}
		}
	}
	for _, b := range m.Balls {
		if cl, ok := claims[b.ID]; ok {
			b.NoGravity = true
			b.ColorOverride = cl.color
		} else {
			b.NoGravity = false
			b.ColorOverride = ""
		}
	}
}

// resolveBallCollisions separates overlapping pairs equally and exchanges
// normal velocity components elastically, but only for approaching pairs;
// resting and separating contacts are left alone.
func (m *Manager) resolveBallCollisions() {
	for i := 0; i < len(m.Balls); i++ {
		a := m.Balls[i]
		if !a.Active {
			continue
		}
		for j := i + 1; j < len(m.Balls); j++ {
			b := m.Balls[j]
			if !b.Active {
				continue
			}
			delta := b.Position.Minus(a.Position)
			dist := delta.Magnitude()
			minDist := a.Radius + b.Radius
			if dist >= minDist {
				continue
			}
			n := delta.NormalizeOr(Up)
			overlap := minDist - dist
			a.Position = a.Position.Minus(n.Times(overlap / 2))
			b.Position = b.Position.Plus(n.Times(overlap / 2))

			relVel := a.Velocity.Minus(b.Velocity)
			approach := relVel.Dot(n)
			if approach <= 0 {
				continue
			}
			// Equal-mass 1D elastic exchange along the normal.
			a.Velocity = a.Velocity.Minus(n.Times(approach))
			b.Velocity = b.Velocity.Plus(n.Times(approach))
		}
	}
}

// removeInactive compacts the ball slice and issues one replacement spawn
// per removed ball while under the cap.
func (m *Manager) removeInactive() {
	removed := 0
	alive := m.Balls[:0]
	for _, b := range m.Balls {
		if b.Active {
			alive = append(alive, b)
		} else {
			removed++
		}
	}
	m.Balls = alive
	for i := 0; i < removed && len(m.Balls) < m.MaxBalls; i++ {
		m.spawnBall()
	}
}

// spawnBall drops a new ball at a random point inside a random top-row
// chamber with a small random initial velocity. Caller holds the lock.
func (m *Manager) spawnBall() {
	radius := DefaultBallRadius
	pos := Vec2{X: m.W * rand.Float64(), Y: radius * 2}
	if tops := m.topRowChambers(); len(tops) > 0 {
		vp := tops[rand.Intn(len(tops))].Viewport()
		pos = Vec2{
			X: vp.X + radius + rand.Float64()*(vp.W-2*radius),
			Y: vp.Y + radius + rand.Float64()*vp.H*0.3,
		}
	}
	b := &Ball{
		ID:       m.NextBallID,
		Position: pos,
		Velocity: Vec2{X: (rand.Float64() - 0.5) * 80, Y: rand.Float64() * 40},
		Radius:   radius,
		Color:    randomBallColor(),
		Active:   true,
	}
	m.NextBallID++
	m.Balls = append(m.Balls, b)
}

func (m *Manager) topRowChambers() []Chamber {
	var tops []Chamber
	for _, ch := range m.Chambers {
		if ch.Viewport().Y == 0 {
			tops = append(tops, ch)
		}
	}
	return tops
}

// Draw renders every chamber clipped to its viewport, then the balls on top.
func (m *Manager) Draw(cv Canvas) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.Chambers {
		vp := ch.Viewport()
		cv.PushClip(vp.X, vp.Y, vp.W, vp.H)
		ch.Draw(cv)
		cv.PopClip()
	}
	for _, b := range m.Balls {
		if !b.Active {
			continue
		}
		cv.FillCircle(b.Position.X, b.Position.Y, b.Radius, b.DisplayColor(), 1)
	}
}

// BallCount returns the live population size.
func (m *Manager) BallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Balls)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
