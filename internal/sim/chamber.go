package sim

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
)

// ChamberKind identifies one of the closed set of chamber variants.
type ChamberKind string

const (
	KindPegs        ChamberKind = "pegs"
	KindFunnel      ChamberKind = "funnel"
	KindSplitter    ChamberKind = "splitter"
	KindSeesaw      ChamberKind = "seesaw"
	KindMixer       ChamberKind = "mixer"
	KindWindTunnel  ChamberKind = "wind_tunnel"
	KindTeslaCoil   ChamberKind = "tesla_coil"
	KindStairs      ChamberKind = "stairs"
	KindTrampoline  ChamberKind = "trampoline"
	KindAccelerator ChamberKind = "accelerator"
	KindConveyor    ChamberKind = "conveyor"
	KindTeleporter  ChamberKind = "teleporter"
	KindMagnet      ChamberKind = "magnet"
	KindBumper      ChamberKind = "bumper"
	KindPong        ChamberKind = "pong"
	KindAntigravity ChamberKind = "antigravity"
)

// AllKinds lists every chamber variant in registry order. The Manager
// shuffles a copy of this at first construction.
var AllKinds = []ChamberKind{
	KindPegs, KindFunnel, KindSplitter, KindSeesaw,
	KindMixer, KindWindTunnel, KindTeslaCoil, KindStairs,
	KindTrampoline, KindAccelerator, KindConveyor, KindTeleporter,
	KindMagnet, KindBumper, KindPong, KindAntigravity,
}

// Chamber is the uniform lifecycle contract every variant implements.
// Update receives working copies of the overlapping balls translated into
// chamber-local coordinates; it mutates them in place and must not retain
// them past the call. State/Restore round-trip obstacle geometry and the
// chamber clock without re-running random generation.
type Chamber interface {
	Kind() ChamberKind
	Viewport() Rect
	SetViewport(v Rect)
	Init(w, h float64)
	Update(dt float64, balls []*Ball)
	Draw(cv Canvas)
	State() json.RawMessage
	Restore(raw json.RawMessage) error
}

// possessor is implemented by chambers that claim a ball for themselves
// (currently only Pong). The Manager queries it every frame and applies the
// gravity/color annotations on its side, so possession survives the ball
// drifting out of the chamber's viewport.
type possessor interface {
	Possession() (ballID int, color string, ok bool)
}

var chamberFactories = map[ChamberKind]func() Chamber{
	KindPegs:        func() Chamber { return &PegsChamber{chamberBase: newBase(KindPegs)} },
	KindFunnel:      func() Chamber { return &FunnelChamber{chamberBase: newBase(KindFunnel)} },
	KindSplitter:    func() Chamber { return &SplitterChamber{chamberBase: newBase(KindSplitter)} },
	KindSeesaw:      func() Chamber { return &SeesawChamber{chamberBase: newBase(KindSeesaw)} },
	KindMixer:       func() Chamber { return &MixerChamber{chamberBase: newBase(KindMixer)} },
	KindWindTunnel:  func() Chamber { return &WindTunnelChamber{chamberBase: newBase(KindWindTunnel)} },
	KindTeslaCoil:   func() Chamber { return &TeslaCoilChamber{chamberBase: newBase(KindTeslaCoil)} },
	KindStairs:      func() Chamber { return &StairsChamber{chamberBase: newBase(KindStairs)} },
	KindTrampoline:  func() Chamber { return &TrampolineChamber{chamberBase: newBase(KindTrampoline)} },
	KindAccelerator: func() Chamber { return &AcceleratorChamber{chamberBase: newBase(KindAccelerator)} },
	KindConveyor:    func() Chamber { return &ConveyorChamber{chamberBase: newBase(KindConveyor)} },
	KindTeleporter:  func() Chamber { return &TeleporterChamber{chamberBase: newBase(KindTeleporter)} },
	KindMagnet:      func() Chamber { return &MagnetChamber{chamberBase: newBase(KindMagnet)} },
	KindBumper:      func() Chamber { return &BumperChamber{chamberBase: newBase(KindBumper)} },
	KindPong:        func() Chamber { return &PongChamber{chamberBase: newBase(KindPong), trackedID: -1} },
	KindAntigravity: func() Chamber { return &AntigravityChamber{chamberBase: newBase(KindAntigravity)} },
}

// NewChamber constructs an uninitialized chamber of the given kind.
func NewChamber(kind ChamberKind) (Chamber, error) {
	factory, ok := chamberFactories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown chamber kind %q", kind)
	}
	return factory(), nil
}

// chamberBase carries the fields shared by every variant: the assigned
// viewport, the derived scale factor, and the local clock.
type chamberBase struct {
	kind     ChamberKind
	viewport Rect
	scale    float64
	w, h     float64
	t        float64
}

func newBase(kind ChamberKind) chamberBase {
	return chamberBase{kind: kind, scale: 1}
}

func (c *chamberBase) Kind() ChamberKind { return c.kind }

func (c *chamberBase) Viewport() Rect { return c.viewport }

func (c *chamberBase) SetViewport(v Rect) {
	c.viewport = v
	c.w = v.W
	c.h = v.H
	s := v.W / RefChamberW
	if alt := v.H / RefChamberH; alt < s {
		s = alt
	}
	if s <= 0 {
		s = 1
	}
	c.scale = s
}

func (c *chamberBase) tick(dt float64) {
	c.t += dt
}

// marshalState logs and returns an empty object on marshal failure; a broken
// blob must never abort a snapshot.
func marshalState(kind ChamberKind, state interface{}) json.RawMessage {
	raw, err := json.Marshal(state)
	if err != nil {
		log.Printf("[SIM] chamber %s: state marshal failed: %v", kind, err)
		return json.RawMessage("{}")
	}
	return raw
}

// placeNonOverlapping runs a bounded random search for a point at least
// minDist away from every previously accepted point. ok is false when the
// attempt budget runs out; callers accept the shortfall and move on.
func placeNonOverlapping(w, h, margin, minDist float64, accepted []Vec2) (Vec2, bool) {
	for attempt := 0; attempt < PlacementAttempts; attempt++ {
		p := Vec2{
			X: margin + rand.Float64()*(w-2*margin),
			Y: margin + rand.Float64()*(h-2*margin),
		}
		clear := true
		for _, q := range accepted {
			if p.Minus(q).Magnitude() < minDist {
				clear = false
				break
			}
		}
		if clear {
			return p, true
		}
	}
	return Vec2{}, false
}
