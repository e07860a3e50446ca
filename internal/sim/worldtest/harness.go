package worldtest

import (
	"testing"

	"museumbot/internal/protocol"
	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
	world "museumbot/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Press()/Hold()/Idle() issue input via Step()
// - every step's snapshot is returned by value
// - audit entries are captured in order
//
// It intentionally avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	Audits []world.AuditEntry
	Frames []world.FrameLogEntry
}

func NewHarness(t *testing.T, cfg world.WorldConfig, cats *catalogs.Catalogs, tun tuning.Tuning) *Harness {
	t.Helper()

	w, err := world.New(cfg, cats, tun)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w, cats)
}

// NewHarnessWithWorld is like NewHarness, but uses an already-constructed world instance.
func NewHarnessWithWorld(t *testing.T, w *world.World, cats *catalogs.Catalogs) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{T: t, Cats: cats, W: w}
	w.SetAuditLogger(auditFunc(func(e world.AuditEntry) error {
		h.Audits = append(h.Audits, e)
		return nil
	}))
	w.SetFrameLogger(frameFunc(func(e world.FrameLogEntry) error {
		h.Frames = append(h.Frames, e)
		return nil
	}))
	return h
}

type auditFunc func(world.AuditEntry) error

func (f auditFunc) WriteAudit(e world.AuditEntry) error { return f(e) }

type frameFunc func(world.FrameLogEntry) error

func (f frameFunc) WriteFrame(e world.FrameLogEntry) error { return f(e) }

func (h *Harness) Step(in protocol.Input, dt float64) world.Snapshot {
	h.T.Helper()
	h.W.Step(in, dt)
	return h.W.Snapshot()
}

// Press steps once with cmds reported as just pressed.
func (h *Harness) Press(dt float64, cmds ...protocol.Command) world.Snapshot {
	return h.Step(protocol.Input{Pressed: protocol.SetOf(cmds...)}, dt)
}

// Hold steps n times with cmds held down.
func (h *Harness) Hold(dt float64, n int, cmds ...protocol.Command) world.Snapshot {
	h.T.Helper()
	in := protocol.Input{Held: protocol.SetOf(cmds...)}
	var s world.Snapshot
	for i := 0; i < n; i++ {
		s = h.Step(in, dt)
	}
	return s
}

// Idle steps n times with no input.
func (h *Harness) Idle(dt float64, n int) world.Snapshot {
	h.T.Helper()
	return h.Hold(dt, n)
}

// AuditActions lists captured audit actions in order.
func (h *Harness) AuditActions() []string {
	out := make([]string, 0, len(h.Audits))
	for _, e := range h.Audits {
		out = append(out, e.Action)
	}
	return out
}

// RepoCatalogs loads configs/exhibits.json relative to the module root.
func RepoCatalogs(t *testing.T, rootRel string) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load(rootRel)
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}
