package world

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"museumbot/internal/protocol"
	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
)

func TestNewComputesInitialCandidate(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	s := w.Snapshot()
	if s.CandidateID != "near" || s.Candidate == nil || s.Candidate.Title != "Near" {
		t.Fatalf("initial candidate: %+v", s)
	}
	if s.Pos.Y != -1.75 {
		t.Fatalf("start pos not clamped into bounds: %+v", s.Pos)
	}
	if s.Tick != 0 || s.Digest == "" {
		t.Fatalf("initial snapshot tick=%d digest=%q", s.Tick, s.Digest)
	}
}

func TestNewRejectsBadInputs(t *testing.T) {
	if _, err := New(WorldConfig{}, nil, tuning.Defaults()); err == nil {
		t.Fatalf("expected error for nil catalogs")
	}
	cats, _ := catalogs.FromExhibits(testExhibits())
	bad := tuning.Defaults()
	bad.TickRateHz = 0
	if _, err := New(WorldConfig{}, cats, bad); err == nil {
		t.Fatalf("expected error for invalid tuning")
	}
}

func TestScanCompletesShowsPanelAndAutoHides(t *testing.T) {
	w, audit := newTestWorld(t, nil)

	w.Step(pressed(protocol.StartScan), 0.5)
	s := w.Snapshot()
	if s.Scan.Phase != "SCANNING" || s.Scan.Progress != 0.75 {
		t.Fatalf("after first tick: %+v", s.Scan)
	}

	w.Step(protocol.Input{}, 0.5)
	s = w.Snapshot()
	if s.Scan.Phase != "COMPLETE" || s.Scan.Progress != 1 {
		t.Fatalf("after second tick: %+v", s.Scan)
	}
	if !s.Panel.Showing || s.Panel.ExhibitID != "near" || s.Panel.Exhibit == nil {
		t.Fatalf("panel not showing: %+v", s.Panel)
	}

	// Panel shown with 0.5s already elapsed; 4.5s more reaches exactly 5.0.
	for i := 0; i < 8; i++ {
		w.Step(protocol.Input{}, 0.5)
		if !w.Snapshot().Panel.Showing {
			t.Fatalf("panel hid early at step %d", i)
		}
	}
	w.Step(protocol.Input{}, 0.5)
	s = w.Snapshot()
	if s.Panel.Showing {
		t.Fatalf("panel still showing at 5.0s: %+v", s.Panel)
	}
	if s.Scan.Phase != "IDLE" {
		t.Fatalf("scan not reset after hide: %+v", s.Scan)
	}
	if s.CandidateID != "near" {
		t.Fatalf("candidate not recomputed: %q", s.CandidateID)
	}

	want := []string{"SCAN_START", "SCAN_COMPLETE", "PANEL_SHOW", "PANEL_HIDE"}
	got := audit.actions()
	if len(got) != len(want) {
		t.Fatalf("audit actions=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit actions=%v want %v", got, want)
		}
	}
	m := w.Metrics()
	if m.ScansStarted != 1 || m.ScansCompleted != 1 || m.Tick != 11 {
		t.Fatalf("metrics: %+v", m)
	}
}

func TestStartScanWithoutCandidateIsDropped(t *testing.T) {
	w, audit := newTestWorld(t, func(tun *tuning.Tuning) { tun.StartPos = [3]float64{2.8, 0, 0} })
	before := w.Snapshot()
	if before.CandidateID != "" {
		t.Fatalf("unexpected candidate %q", before.CandidateID)
	}
	w.Step(pressed(protocol.StartScan), 0.1)
	s := w.Snapshot()
	if s.Scan.Phase != "IDLE" {
		t.Fatalf("scan started without candidate: %+v", s.Scan)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("audit=%+v", audit.entries)
	}
	e := audit.entries[0]
	if e.Code != protocol.ErrInvalidOperation || e.Reason != protocol.ErrNoCandidate {
		t.Fatalf("audit entry: %+v", e)
	}
	if w.Metrics().InvalidOps != 1 {
		t.Fatalf("invalid ops not counted")
	}
}

func TestStartScanWhilePanelShowingIsRejected(t *testing.T) {
	w, audit := newTestWorld(t, nil)
	w.Step(pressed(protocol.StartScan), 0.5)
	w.Step(protocol.Input{}, 0.5) // complete, panel showing

	audit.entries = nil
	w.Step(pressed(protocol.StartScan), 0.1)
	s := w.Snapshot()
	if s.Scan.Phase != "COMPLETE" || !s.Panel.Showing {
		t.Fatalf("state changed by rejected scan: %+v %+v", s.Scan, s.Panel)
	}
	if len(audit.entries) != 1 || audit.entries[0].Code != protocol.ErrInvalidOperation {
		t.Fatalf("audit=%+v", audit.entries)
	}
}

func TestCancelOrHide(t *testing.T) {
	w, audit := newTestWorld(t, nil)

	// Nothing to cancel: no-op.
	w.Step(pressed(protocol.CancelOrHide), 0.1)
	if len(audit.entries) != 0 || w.QuitRequested() {
		t.Fatalf("idle cancel had effects: %+v", audit.entries)
	}

	w.Step(pressed(protocol.StartScan), 0.1)
	w.Step(pressed(protocol.CancelOrHide), 0.1)
	if s := w.Snapshot(); s.Scan.Phase != "IDLE" || s.Panel.Showing {
		t.Fatalf("cancel: %+v %+v", s.Scan, s.Panel)
	}
	if w.Metrics().ScansCancelled != 1 {
		t.Fatalf("cancel not counted")
	}

	w.Step(pressed(protocol.StartScan), 1.0) // completes in one tick (1.5 progress)
	if s := w.Snapshot(); !s.Panel.Showing {
		t.Fatalf("panel not showing: %+v", s.Panel)
	}
	w.Step(pressed(protocol.CancelOrHide), 0.1)
	s := w.Snapshot()
	if s.Panel.Showing || s.Scan.Phase != "IDLE" {
		t.Fatalf("hide: %+v %+v", s.Scan, s.Panel)
	}
	last := audit.entries[len(audit.entries)-1]
	if last.Action != "PANEL_HIDE" || last.Reason != "user" {
		t.Fatalf("last audit: %+v", last)
	}
}

func TestCandidateFrozenWhileScanning(t *testing.T) {
	w, _ := newTestWorld(t, func(tun *tuning.Tuning) { tun.ScanDurationSec = 100 })
	w.Step(pressed(protocol.StartScan), 0.1)
	// Walk away from "near" for a while.
	for i := 0; i < 30; i++ {
		w.Step(held(protocol.MoveBackward), 0.1)
	}
	s := w.Snapshot()
	if s.CandidateID != "near" || s.Scan.ExhibitID != "near" {
		t.Fatalf("candidate changed during scan: %+v", s)
	}
	w.Step(pressed(protocol.CancelOrHide), 0.1)
	if s := w.Snapshot(); s.CandidateID != "" {
		t.Fatalf("candidate not refreshed after cancel: %q", s.CandidateID)
	}
}

func TestHeldMovesAndRotation(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	start := w.Snapshot().Pos

	w.Step(held(protocol.MoveForward), 0.1)
	s := w.Snapshot()
	if math.Abs(s.Pos.Z-(start.Z-0.3)) > 1e-9 {
		t.Fatalf("forward: z=%v want %v", s.Pos.Z, start.Z-0.3)
	}

	// 270 deg/s for 1/3 s clockwise = heading 270, facing +x.
	w.Step(held(protocol.RotateCW), 1.0/3.0)
	s = w.Snapshot()
	if math.Abs(s.Heading-270) > 1e-9 || math.Abs(s.Front.X-1) > 1e-9 {
		t.Fatalf("rotate cw: heading=%v front=%+v", s.Heading, s.Front)
	}

	w.Step(held(protocol.RotateCCW), 1.0/3.0)
	if h := w.Snapshot().Heading; math.Abs(h) > 1e-9 && math.Abs(h-360) > 1e-9 {
		t.Fatalf("rotate ccw: heading=%v", h)
	}
}

func TestHeldMovesStayInBounds(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	b := w.Bounds()
	inputs := []protocol.Input{
		held(protocol.MoveForward, protocol.MoveUp),
		held(protocol.StrafeLeft, protocol.RotateCCW),
		held(protocol.MoveBackward, protocol.MoveDown, protocol.StrafeRight),
		pressed(protocol.TeleportRandom),
	}
	for i := 0; i < 2000; i++ {
		w.Step(inputs[i%len(inputs)], 0.05)
		if p := w.Snapshot().Pos; !b.Contains(p) {
			t.Fatalf("step %d: pos %+v outside %+v", i, p, b)
		}
	}
}

func TestTogglePatrol(t *testing.T) {
	w, audit := newTestWorld(t, nil)
	w.Step(pressed(protocol.TogglePatrol), 0.1)
	if m := w.Snapshot().Mode; m != "PATROL" {
		t.Fatalf("mode=%s want PATROL", m)
	}
	w.Step(pressed(protocol.TogglePatrol), 0.1)
	if m := w.Snapshot().Mode; m != "MANUAL" {
		t.Fatalf("mode=%s want MANUAL", m)
	}
	got := audit.actions()
	if len(got) != 2 || got[0] != "PATROL_START" || got[1] != "PATROL_STOP" {
		t.Fatalf("audit=%v", got)
	}

	empty, emptyAudit := newTestWorld(t, func(tun *tuning.Tuning) { tun.PatrolWaypoints = nil })
	empty.Step(pressed(protocol.TogglePatrol), 0.1)
	if m := empty.Snapshot().Mode; m != "MANUAL" {
		t.Fatalf("empty patrol changed mode to %s", m)
	}
	if len(emptyAudit.entries) != 1 || emptyAudit.entries[0].Reason != protocol.ErrNoWaypoints {
		t.Fatalf("audit=%+v", emptyAudit.entries)
	}
}

func TestTeleportTravelsThenReturnsToManual(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	w.Step(pressed(protocol.TeleportRandom), 0.01)
	s := w.Snapshot()
	if s.Mode != "DIRECTED" || s.Target == nil {
		t.Fatalf("teleport: %+v", s)
	}
	target := *s.Target
	if target.Y != s.Pos.Y {
		t.Fatalf("teleport changed height: target=%+v pos=%+v", target, s.Pos)
	}
	// Room diagonal is < 13 units; at 5 u/s, 4 s is plenty.
	for i := 0; i < 40; i++ {
		w.Step(protocol.Input{}, 0.1)
	}
	s = w.Snapshot()
	if s.Mode != "MANUAL" {
		t.Fatalf("still traveling: %+v", s)
	}
	if s.Pos.Sub(target).Len() > 0.1 {
		t.Fatalf("pos %+v not at target %+v", s.Pos, target)
	}
}

func TestQuitLatches(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	w.Step(pressed(protocol.Quit), 0.1)
	w.Step(protocol.Input{}, 0.1)
	if !w.QuitRequested() || !w.Snapshot().QuitRequested {
		t.Fatalf("quit not latched")
	}
}

func TestNegativeAndNaNDTAreIgnored(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	before := w.Snapshot().Pos
	w.Step(held(protocol.MoveForward), -1)
	w.Step(held(protocol.MoveForward), math.NaN())
	if after := w.Snapshot().Pos; after != before {
		t.Fatalf("pos moved with bad dt: %+v -> %+v", before, after)
	}
}

func TestFrameLoggerAndSnapshotSink(t *testing.T) {
	w, _ := newTestWorld(t, nil)
	frames := &recordingFrames{}
	w.SetFrameLogger(frames)
	sink := make(chan Snapshot, 1)
	w.SetSnapshotSink(sink)

	tick, digest := w.Step(protocol.Input{Held: protocol.SetOf(protocol.MoveForward), Pressed: protocol.SetOf(protocol.StartScan)}, 0.1)
	w.Step(protocol.Input{}, 0.1) // sink full: dropped, must not block

	if tick != 0 || len(frames.entries) != 2 {
		t.Fatalf("tick=%d frames=%d", tick, len(frames.entries))
	}
	f := frames.entries[0]
	if f.Digest != digest || len(f.Held) != 1 || f.Held[0] != "MOVE_FORWARD" || f.Pressed[0] != "START_SCAN" {
		t.Fatalf("frame: %+v", f)
	}
	got := <-sink
	if got.Tick != 1 || got.Digest != digest {
		t.Fatalf("sink snapshot: tick=%d digest=%q", got.Tick, got.Digest)
	}
}

func TestFixedConfigReadableWhileRunning(t *testing.T) {
	w, _ := newTestWorld(t, func(tn *tuning.Tuning) { tn.TickRateHz = 1000 })
	want := w.Bounds()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n := 0
	src := InputFunc(func() protocol.Input {
		n++
		in := held(protocol.MoveForward, protocol.RotateCW)
		if n%7 == 0 {
			in.Pressed = protocol.SetOf(protocol.TogglePatrol)
		}
		if n == 200 {
			defer w.Stop()
		}
		return in
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(ctx, src); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for polling := true; polling; {
		select {
		case <-done:
			polling = false
		default:
		}
		if got := w.Bounds(); got != want {
			t.Fatalf("bounds changed while running: %+v", got)
		}
		_ = w.Snapshot()
		_ = w.Metrics()
	}
	if w.CurrentTick() != 200 {
		t.Fatalf("tick=%d want 200", w.CurrentTick())
	}
}
