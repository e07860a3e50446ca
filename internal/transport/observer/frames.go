package observer

import (
	"museumbot/internal/observerproto"
	"museumbot/internal/sim/world"
	modelpkg "museumbot/internal/sim/world/kernel/model"
)

func FrameFromSnapshot(s world.Snapshot) observerproto.FrameMsg {
	f := observerproto.FrameMsg{
		Type:            observerproto.TypeFrame,
		ProtocolVersion: observerproto.Version,
		Tick:            s.Tick,
		Digest:          s.Digest,
		Avatar: observerproto.AvatarState{
			Pos:     s.Pos.Array(),
			Front:   s.Front.Array(),
			Heading: s.Heading,
			Mode:    s.Mode,
		},
		CandidateID: s.CandidateID,
		Scan: observerproto.ScanState{
			Phase:     s.Scan.Phase,
			ExhibitID: s.Scan.ExhibitID,
			Progress:  s.Scan.Progress,
		},
		Panel: observerproto.PanelState{
			Showing:   s.Panel.Showing,
			ExhibitID: s.Panel.ExhibitID,
			Elapsed:   s.Panel.Elapsed,
			Remaining: s.Panel.Remaining,
		},
		Quit: s.QuitRequested,
	}
	if s.Target != nil {
		t := s.Target.Array()
		f.Avatar.Target = &t
	}
	if e := s.Panel.Exhibit; e != nil {
		f.Panel.Title = e.Title
		f.Panel.Description = e.Description
		f.Panel.Artist = e.Artist
		f.Panel.YearLabel = e.YearLabel()
	}
	return f
}

func exhibitInfo(e modelpkg.Exhibit) observerproto.ExhibitInfo {
	return observerproto.ExhibitInfo{
		ID:          e.ID,
		Pos:         e.Pos.Array(),
		Title:       e.Title,
		Description: e.Description,
		Artist:      e.Artist,
		Year:        e.Year,
		YearLabel:   e.YearLabel(),
		Scale:       e.Scale,
		RotationDeg: e.RotationDeg.Array(),
		Model:       e.Model,
	}
}
