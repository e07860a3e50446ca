package world

import (
	modelpkg "museumbot/internal/sim/world/kernel/model"
)

// Snapshot is the read-only view handed to renderers after each Step. It is a value copy;
// nothing in it aliases world state.
type Snapshot struct {
	Tick    uint64 // ticks completed
	WorldID string
	Digest  string

	Pos     modelpkg.Vec3
	Front   modelpkg.Vec3
	Heading float64
	Mode    string
	Target  *modelpkg.Vec3

	CandidateID string
	Candidate   *modelpkg.Exhibit

	Scan  ScanView
	Panel PanelView

	QuitRequested bool
}

type ScanView struct {
	Phase     string
	ExhibitID string
	Progress  float64
}

type PanelView struct {
	Showing   bool
	ExhibitID string
	Elapsed   float64
	Remaining float64
	Exhibit   *modelpkg.Exhibit
}

// Snapshot returns the last published snapshot. Safe from any goroutine.
func (w *World) Snapshot() Snapshot {
	if w == nil {
		return Snapshot{}
	}
	s := w.snap.Load()
	if s == nil {
		return Snapshot{}
	}
	return *s
}

func (w *World) QuitRequested() bool { return w.quit }

func (w *World) buildSnapshot(digest string) Snapshot {
	ns := w.nav.State()
	ss := w.scan.State()
	ps := w.panel.State()

	s := Snapshot{
		Tick:        w.tick.Load(),
		WorldID:     w.cfg.ID,
		Digest:      digest,
		Pos:         ns.Pos,
		Front:       ns.Front,
		Heading:     ns.Heading,
		Mode:        ns.Mode.String(),
		Target:      ns.Target,
		CandidateID: w.candidate,
		Scan: ScanView{
			Phase:     ss.Phase.String(),
			ExhibitID: ss.ExhibitID,
			Progress:  ss.Progress,
		},
		Panel: PanelView{
			Showing:   ps.Showing,
			ExhibitID: ps.ExhibitID,
			Elapsed:   ps.Elapsed,
		},
		QuitRequested: w.quit,
	}
	if e, ok := w.exhibits.Get(w.candidate); ok {
		s.Candidate = &e
	}
	if ps.Showing {
		if rem := w.panel.Duration() - ps.Elapsed; rem > 0 {
			s.Panel.Remaining = rem
		}
		if e, ok := w.exhibits.Get(ps.ExhibitID); ok {
			s.Panel.Exhibit = &e
		}
	}
	return s
}

func (w *World) publish(digest string) {
	s := w.buildSnapshot(digest)
	w.snap.Store(&s)
	if w.snapshotSink != nil {
		select {
		case w.snapshotSink <- s:
		default:
			// Drop if the sink is backed up; the next step publishes a fresher one.
		}
	}
}
