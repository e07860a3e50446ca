package world

import (
	"time"

	"museumbot/internal/protocol"
	"museumbot/internal/sim/world/logic/mathx"
)

// Step advances the world by one frame of dt seconds. Order:
//  1. input (held moves, held rotations, then pressed commands)
//  2. navigator autonomy
//  3. proximity candidate (only while the panel is hidden and no scan runs)
//  4. scan progress; completion shows the panel
//  5. panel timeout
//
// It returns the tick that was stepped and the state digest after it.
func (w *World) Step(in protocol.Input, dt float64) (tick uint64, digest string) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	dt = mathx.SanitizeDT(dt)

	w.applyHeld(in.Held, dt)
	w.applyPressed(nowTick, in.Pressed)

	w.nav.Tick(dt)

	if w.panel.Hidden() && !w.scan.Scanning() {
		w.refreshCandidate()
	}

	if id, done := w.scan.Tick(dt, w.tuning.ScanDurationSec, w.tuning.ScanRate); done {
		w.counters.scansCompleted++
		w.audit(nowTick, "SCAN_COMPLETE", id, "", "")
		w.panel.Show(id)
		w.audit(nowTick, "PANEL_SHOW", id, "", "")
	}

	if w.panel.Tick(dt) {
		w.onPanelHidden(nowTick, "timeout")
	}

	digest = w.stateDigest(nowTick)
	if w.frameLogger != nil {
		_ = w.frameLogger.WriteFrame(FrameLogEntry{
			Tick:    nowTick,
			DT:      dt,
			Held:    in.Held.Names(),
			Pressed: in.Pressed.Names(),
			Digest:  digest,
		})
	}

	w.tick.Add(1)
	w.publish(digest)

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	w.storeMetrics(stepMS)
	return nowTick, digest
}

// StepOnce is Step with the configured fixed timestep. It is what the headless loop and
// replays use, so frames recorded by Run re-step identically.
func (w *World) StepOnce(in protocol.Input) (tick uint64, digest string) {
	return w.Step(in, w.FixedDT())
}

func (w *World) FixedDT() float64 {
	if w.cfg.TickRateHz <= 0 {
		return 0
	}
	return 1.0 / float64(w.cfg.TickRateHz)
}
