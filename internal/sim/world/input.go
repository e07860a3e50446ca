package world

import (
	"errors"

	"museumbot/internal/protocol"
	"museumbot/internal/sim/world/feature/movement"
	"museumbot/internal/sim/world/feature/scan"
)

var heldMoves = []struct {
	cmd protocol.Command
	dir movement.MoveDir
}{
	{protocol.MoveForward, movement.MoveForward},
	{protocol.MoveBackward, movement.MoveBackward},
	{protocol.StrafeLeft, movement.StrafeLeft},
	{protocol.StrafeRight, movement.StrafeRight},
	{protocol.MoveUp, movement.MoveUp},
	{protocol.MoveDown, movement.MoveDown},
}

// Pressed commands are handled in this order regardless of how the frame reported them.
var pressedOrder = []protocol.Command{
	protocol.StartScan,
	protocol.CancelOrHide,
	protocol.TeleportRandom,
	protocol.TogglePatrol,
	protocol.Quit,
}

func (w *World) applyHeld(held protocol.CommandSet, dt float64) {
	if held == 0 || dt == 0 {
		return
	}
	for _, m := range heldMoves {
		if held.Has(m.cmd) {
			w.nav.ApplyManualMove(m.dir, w.tuning.MoveSpeed, dt)
		}
	}
	// CW turns right, which is a negative heading change.
	if held.Has(protocol.RotateCW) {
		w.nav.Rotate(-w.tuning.RotateSpeedDeg, dt)
	}
	if held.Has(protocol.RotateCCW) {
		w.nav.Rotate(w.tuning.RotateSpeedDeg, dt)
	}
}

func (w *World) applyPressed(nowTick uint64, pressed protocol.CommandSet) {
	if pressed == 0 {
		return
	}
	for _, c := range pressedOrder {
		if !pressed.Has(c) {
			continue
		}
		switch c {
		case protocol.StartScan:
			w.handleStartScan(nowTick)
		case protocol.CancelOrHide:
			w.handleCancelOrHide(nowTick)
		case protocol.TeleportRandom:
			p := w.nav.TeleportToRandomPoint(w.rng)
			w.counters.teleports++
			w.audit(nowTick, "TELEPORT", "", "", formatVec(p))
		case protocol.TogglePatrol:
			w.handleTogglePatrol(nowTick)
		case protocol.Quit:
			if !w.quit {
				w.quit = true
				w.audit(nowTick, "QUIT", "", "", "")
			}
		}
	}
}

func (w *World) handleStartScan(nowTick uint64) {
	candidate := w.candidate
	if err := w.scan.Start(candidate, w.panel.Hidden()); err != nil {
		w.invalidOp(nowTick, "START_SCAN", candidate, scanRejectCode(err), err)
		return
	}
	w.counters.scansStarted++
	w.audit(nowTick, "SCAN_START", candidate, "", "")
}

// handleCancelOrHide hides a showing panel, else cancels a running scan, else does nothing.
func (w *World) handleCancelOrHide(nowTick uint64) {
	if !w.panel.Hidden() {
		w.panel.Hide()
		w.onPanelHidden(nowTick, "user")
		return
	}
	if w.scan.Scanning() {
		id := w.scan.State().ExhibitID
		w.scan.Cancel()
		w.counters.scansCancelled++
		w.audit(nowTick, "SCAN_CANCEL", id, "", "")
	}
}

func (w *World) handleTogglePatrol(nowTick uint64) {
	if w.nav.Mode() == movement.ModeAutonomousPatrol {
		w.nav.StopAutonomy()
		w.audit(nowTick, "PATROL_STOP", "", "", "")
		return
	}
	if !w.nav.SetAutonomousPatrol(w.patrol) {
		w.invalidOp(nowTick, "TOGGLE_PATROL", "", protocol.ErrNoWaypoints, errNoWaypoints)
		return
	}
	w.audit(nowTick, "PATROL_START", "", "", "")
}

var errNoWaypoints = errors.New("no patrol waypoints configured")

// onPanelHidden runs for every Showing -> Hidden transition; a completed scan returns to idle.
func (w *World) onPanelHidden(nowTick uint64, reason string) {
	id := w.scan.State().ExhibitID
	w.audit(nowTick, "PANEL_HIDE", id, "", reason)
	w.scan.Reset()
}

func scanRejectCode(err error) string {
	switch {
	case errors.Is(err, scan.ErrNoCandidate):
		return protocol.ErrNoCandidate
	case errors.Is(err, scan.ErrPanelShowing):
		return protocol.ErrPanelShowing
	case errors.Is(err, scan.ErrNotIdle):
		return protocol.ErrConflict
	default:
		return protocol.ErrInternal
	}
}
