package sim

import (
	"encoding/json"
	"errors"
	"log"
)

// Snapshot is the full serialized simulation state: scalars, the ball
// population, the shuffled chamber ordering, and one opaque blob per
// chamber. A restored Manager continues the visual experience instead of
// restarting it.
type Snapshot struct {
	T             float64           `json:"t"`
	CanvasW       float64           `json:"canvas_w"`
	CanvasH       float64           `json:"canvas_h"`
	Balls         []Ball            `json:"balls"`
	NextBallID    int               `json:"next_ball_id"`
	SpawnTimer    float64           `json:"spawn_timer"`
	SpawnInterval float64           `json:"spawn_interval"`
	MaxBalls      int               `json:"max_balls"`
	Cols          int               `json:"cols"`
	Rows          int               `json:"rows"`
	Order         []ChamberKind     `json:"order"`
	Chambers      []ChamberSnapshot `json:"chambers"`
}

// ChamberSnapshot pairs a chamber's viewport with its variant-specific blob.
type ChamberSnapshot struct {
	Kind     ChamberKind     `json:"kind"`
	Viewport Rect            `json:"viewport"`
	State    json.RawMessage `json:"state"`
}

// Snapshot captures the complete current state.
func (m *Manager) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := &Snapshot{
		T:             m.T,
		CanvasW:       m.W,
		CanvasH:       m.H,
		NextBallID:    m.NextBallID,
		SpawnTimer:    m.SpawnTimer,
		SpawnInterval: m.SpawnInterval,
		MaxBalls:      m.MaxBalls,
		Cols:          m.Cols,
		Rows:          m.Rows,
	}
	s.Balls = make([]Ball, 0, len(m.Balls))
	for _, b := range m.Balls {
		s.Balls = append(s.Balls, *b)
	}
	s.Order = make([]ChamberKind, 0, len(m.Chambers))
	s.Chambers = make([]ChamberSnapshot, 0, len(m.Chambers))
	for _, ch := range m.Chambers {
		s.Order = append(s.Order, ch.Kind())
		s.Chambers = append(s.Chambers, ChamberSnapshot{
			Kind:     ch.Kind(),
			Viewport: ch.Viewport(),
			State:    ch.State(),
		})
	}
	return s
}

// Restore loads a snapshot. Missing fields fall back to the manager's
// current values; individual chamber blob failures are logged and that
// chamber keeps its pre-restore state. The chamber list is made to match the
// saved ordering verbatim, whether the manager is empty or already running
// with its own shuffle; list order decides routing sequence, so it must
// survive restore exactly. Obstacle geometry comes from the snapshot, never
// from re-generation. Restore never aborts partway and is idempotent.
func (m *Manager) Restore(s *Snapshot) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.CanvasW > 0 {
		m.W = s.CanvasW
	}
	if s.CanvasH > 0 {
		m.H = s.CanvasH
	}
	m.T = s.T
	m.SpawnTimer = s.SpawnTimer
	if s.SpawnInterval > 0 {
		m.SpawnInterval = s.SpawnInterval
	}
	if s.MaxBalls > 0 {
		m.MaxBalls = s.MaxBalls
	}
	if s.NextBallID > 0 {
		m.NextBallID = s.NextBallID
	}
	if s.Cols > 0 && s.Rows > 0 {
		m.Cols = s.Cols
		m.Rows = s.Rows
	}

	if len(s.Order) > 0 {
		m.reorderChambers(s.Order)
		// Geometry arrives via blobs; generation would re-randomize it.
		m.layoutChambers(false)
	}

	for _, cs := range s.Chambers {
		ch := m.findChamber(cs.Kind)
		if ch == nil {
			log.Printf("[SIM] restore: no chamber of kind %q, skipping blob", cs.Kind)
			continue
		}
		if cs.Viewport.W > 0 && cs.Viewport.H > 0 {
			ch.SetViewport(cs.Viewport)
		}
		if len(cs.State) == 0 {
			continue
		}
		if err := ch.Restore(cs.State); err != nil {
			log.Printf("[SIM] restore: chamber %s blob rejected: %v", cs.Kind, err)
		}
	}

	// Ball list is replaced wholesale; unset fields get safe defaults.
	m.Balls = m.Balls[:0]
	for i := range s.Balls {
		b := s.Balls[i]
		if b.Radius <= 0 {
			b.Radius = DefaultBallRadius
		}
		if b.Color == "" {
			b.Color = randomBallColor()
		}
		if b.ID >= m.NextBallID {
			m.NextBallID = b.ID + 1
		}
		copied := b
		m.Balls = append(m.Balls, &copied)
	}

	log.Printf("[SIM] restored state: t=%.2f, %d balls, %d chamber blobs",
		m.T, len(m.Balls), len(s.Chambers))
	return nil
}

// RestoreJSON decodes and applies a serialized snapshot.
func (m *Manager) RestoreJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return m.Restore(&s)
}

// reorderChambers rebuilds the chamber list to match the saved ordering,
// reusing existing instances by kind and constructing any that are missing.
// An Init that ran before the restore leaves a freshly shuffled list; the
// saved ordering wins over it.
func (m *Manager) reorderChambers(order []ChamberKind) {
	existing := make(map[ChamberKind]Chamber, len(m.Chambers))
	for _, ch := range m.Chambers {
		if _, dup := existing[ch.Kind()]; !dup {
			existing[ch.Kind()] = ch
		}
	}
	chambers := make([]Chamber, 0, len(order))
	for _, kind := range order {
		if ch, ok := existing[kind]; ok {
			chambers = append(chambers, ch)
			delete(existing, kind)
			continue
		}
		ch, err := NewChamber(kind)
		if err != nil {
			log.Printf("[SIM] restore: skipping chamber %q: %v", kind, err)
			continue
		}
		chambers = append(chambers, ch)
	}
	m.Chambers = chambers
}

func (m *Manager) findChamber(kind ChamberKind) Chamber {
	for _, ch := range m.Chambers {
		if ch.Kind() == kind {
			return ch
		}
	}
	return nil
}

// Reset throws the whole state away and rebuilds from scratch with a fresh
// shuffle: the restart counterpart to hot reload.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.Balls = nil
	m.Chambers = nil
	m.NextBallID = 1
	m.T = 0
	m.SpawnTimer = 0
	m.Cols = 0
	m.Rows = 0
	w, h := m.W, m.H
	m.mu.Unlock()
	m.Init(w, h)
}

// FrameState is the lightweight per-frame projection streamed to viewers.
type FrameState struct {
	T     float64     `json:"t"`
	Balls []FrameBall `json:"balls"`
}

type FrameBall struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
	Color  string  `json:"color"`
}

// Frame captures the current renderable ball list.
func (m *Manager) Frame() FrameState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f := FrameState{T: m.T, Balls: make([]FrameBall, 0, len(m.Balls))}
	for _, b := range m.Balls {
		if !b.Active {
			continue
		}
		f.Balls = append(f.Balls, FrameBall{
			ID: b.ID, X: b.Position.X, Y: b.Position.Y,
			Radius: b.Radius, Color: b.DisplayColor(),
		})
	}
	return f
}
