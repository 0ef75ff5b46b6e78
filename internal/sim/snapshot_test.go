package sim

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSnapshotRestoreIdempotent(t *testing.T) {
	m := New()
	m.Init(1920, 1080)
	for i := 0; i < 30; i++ {
		m.Update(1.0 / 60)
	}

	first := m.Snapshot()
	raw1, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Restore into a fresh manager: chambers are reconstructed from the
	// saved ordering, geometry comes from the blobs.
	restored := New()
	if err := restored.RestoreJSON(raw1); err != nil {
		t.Fatalf("restore: %v", err)
	}
	raw2, err := json.Marshal(restored.Snapshot())
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}

	if !bytes.Equal(raw1, raw2) {
		t.Errorf("save→load→save is not stable:\nfirst:  %.300s\nsecond: %.300s", raw1, raw2)
	}
}

func TestRestorePreservesChamberOrdering(t *testing.T) {
	m := New()
	m.Init(1280, 720)
	s := m.Snapshot()

	restored := New()
	if err := restored.Restore(s); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(restored.Chambers) != len(m.Chambers) {
		t.Fatalf("chamber count %d != %d", len(restored.Chambers), len(m.Chambers))
	}
	for i := range m.Chambers {
		if restored.Chambers[i].Kind() != m.Chambers[i].Kind() {
			t.Errorf("chamber %d: kind %s != %s (order must not be re-shuffled)",
				i, restored.Chambers[i].Kind(), m.Chambers[i].Kind())
		}
	}
}

func TestRestoreIntoInitializedManagerAdoptsSavedOrder(t *testing.T) {
	src := New()
	src.Init(1280, 720)
	s := src.Snapshot()

	// The boot path initializes first and restores over the running scene:
	// the saved ordering must win over the fresh shuffle, because list order
	// decides routing sequence.
	dst := New()
	dst.Init(1280, 720)
	if err := dst.Restore(s); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(dst.Chambers) != len(s.Order) {
		t.Fatalf("chamber count %d != %d", len(dst.Chambers), len(s.Order))
	}
	for i, kind := range s.Order {
		if dst.Chambers[i].Kind() != kind {
			t.Errorf("chamber %d: kind %s != saved %s", i, dst.Chambers[i].Kind(), kind)
		}
	}

	// Geometry must come from the blobs, not survive from dst's own Init.
	want := src.findChamber(KindPegs).(*PegsChamber).pegs
	got := dst.findChamber(KindPegs).(*PegsChamber).pegs
	if len(got) != len(want) {
		t.Fatalf("peg count %d != %d after restore over a live scene", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("peg %d: %v != %v after restore over a live scene", i, got[i], want[i])
		}
	}
}

func TestRestoreDoesNotRerandomizeGeometry(t *testing.T) {
	m := New()
	m.Init(1280, 720)
	pegs := m.findChamber(KindPegs).(*PegsChamber)
	saved := make([]Vec2, len(pegs.pegs))
	copy(saved, pegs.pegs)

	s := m.Snapshot()
	restored := New()
	if err := restored.Restore(s); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got := restored.findChamber(KindPegs).(*PegsChamber).pegs
	if len(got) != len(saved) {
		t.Fatalf("peg count changed on restore: %d != %d", len(got), len(saved))
	}
	for i := range saved {
		if got[i] != saved[i] {
			t.Errorf("peg %d moved on restore: %v != %v", i, got[i], saved[i])
		}
	}
}

func TestRestoreBallDefaults(t *testing.T) {
	m := New()
	m.W, m.H = 800, 600

	err := m.Restore(&Snapshot{
		CanvasW: 800, CanvasH: 600,
		Balls: []Ball{{ID: 7, Position: Vec2{X: 100, Y: 100}, Active: true}},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(m.Balls) != 1 {
		t.Fatalf("ball list should be replaced wholesale, got %d", len(m.Balls))
	}
	b := m.Balls[0]
	if b.Radius != DefaultBallRadius {
		t.Errorf("missing radius should default, got %f", b.Radius)
	}
	if b.Color == "" {
		t.Errorf("missing color should default")
	}
	if m.NextBallID <= 7 {
		t.Errorf("next ball ID must stay ahead of restored IDs, got %d", m.NextBallID)
	}
}

func TestRestoreMalformedChamberBlobIsLocal(t *testing.T) {
	m := New()
	m.Init(1280, 720)
	s := m.Snapshot()

	// Corrupt one blob; the rest of the restore must still land.
	s.Chambers[0].State = json.RawMessage(`{"t": "not a number"`)
	ballCount := len(s.Balls)

	restored := New()
	if err := restored.Restore(s); err != nil {
		t.Fatalf("restore should recover locally, got %v", err)
	}
	if len(restored.Balls) != ballCount {
		t.Errorf("ball restore aborted after bad blob: %d != %d", len(restored.Balls), ballCount)
	}
	if len(restored.Chambers) != len(m.Chambers) {
		t.Errorf("chamber set changed after bad blob")
	}
}
