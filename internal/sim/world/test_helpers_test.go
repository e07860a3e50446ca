package world

import (
	"testing"

	"museumbot/internal/protocol"
	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
	modelpkg "museumbot/internal/sim/world/kernel/model"
)

type recordingAudit struct {
	entries []AuditEntry
}

func (r *recordingAudit) WriteAudit(e AuditEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingAudit) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type recordingFrames struct {
	entries []FrameLogEntry
}

func (r *recordingFrames) WriteFrame(e FrameLogEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

// testExhibits puts "near" half a unit in front of the default start pose and "far" out of reach.
func testExhibits() []modelpkg.Exhibit {
	return []modelpkg.Exhibit{
		{ID: "near", Pos: modelpkg.Vec3{X: 0, Y: -1.75, Z: -2.5}, Title: "Near", Year: -800},
		{ID: "far", Pos: modelpkg.Vec3{X: 2, Y: -1.75, Z: 5}, Title: "Far", Year: 100},
	}
}

func newTestWorld(t *testing.T, mutate func(*tuning.Tuning)) (*World, *recordingAudit) {
	t.Helper()
	return newSeededTestWorld(t, 42, mutate)
}

func newSeededTestWorld(t *testing.T, seed int64, mutate func(*tuning.Tuning)) (*World, *recordingAudit) {
	t.Helper()
	cats, err := catalogs.FromExhibits(testExhibits())
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	tun := tuning.Defaults()
	if mutate != nil {
		mutate(&tun)
	}
	w, err := New(WorldConfig{ID: "test", Seed: seed}, cats, tun)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	audit := &recordingAudit{}
	w.SetAuditLogger(audit)
	return w, audit
}

func pressed(cmds ...protocol.Command) protocol.Input {
	return protocol.Input{Pressed: protocol.SetOf(cmds...)}
}

func held(cmds ...protocol.Command) protocol.Input {
	return protocol.Input{Held: protocol.SetOf(cmds...)}
}
