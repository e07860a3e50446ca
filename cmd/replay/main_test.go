package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	persistlog "museumbot/internal/persistence/log"
	"museumbot/internal/persistence/session"
	"museumbot/internal/protocol"
	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
	"museumbot/internal/sim/world"
)

const repoConfigs = "../../configs"

// recordSession runs a short scripted session against the repo configs and returns its dir.
func recordSession(t *testing.T) string {
	t.Helper()
	cats, err := catalogs.Load(repoConfigs)
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	tp := filepath.Join(repoConfigs, "tuning.yaml")
	tune, err := tuning.Load(tp)
	if err != nil {
		t.Fatalf("tuning: %v", err)
	}
	w, err := world.New(world.WorldConfig{ID: "replay_test", Seed: 99}, cats, tune)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}

	dir := t.TempDir()
	if err := session.Write(dir, session.ManifestV1{
		SessionID:      "s1",
		WorldID:        "replay_test",
		Seed:           99,
		TickRateHz:     w.TickRateHz(),
		TuningPath:     tp,
		TuningDigest:   tune.Digest,
		ConfigDir:      repoConfigs,
		ExhibitsDigest: cats.Exhibits.Digest,
		StartedAt:      time.Unix(0, 0).UTC(),
	}); err != nil {
		t.Fatalf("session.Write: %v", err)
	}

	fl := persistlog.NewFrameLogger(dir)
	w.SetFrameLogger(fl)
	script := []protocol.Input{
		{Pressed: protocol.SetOf(protocol.StartScan)},
		{Held: protocol.SetOf(protocol.StrafeRight, protocol.RotateCW)},
		{Pressed: protocol.SetOf(protocol.TeleportRandom)},
		{},
		{Pressed: protocol.SetOf(protocol.TogglePatrol)},
		{Held: protocol.SetOf(protocol.MoveForward)},
	}
	for i := 0; i < 90; i++ {
		w.Step(script[i%len(script)], 0.02)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("close frames: %v", err)
	}
	return dir
}

func TestReplayVerifiesRecordedSession(t *testing.T) {
	dir := recordSession(t)
	m, err := session.Read(dir)
	if err != nil {
		t.Fatalf("session.Read: %v", err)
	}
	w, err := rebuildWorld(m, "", "")
	if err != nil {
		t.Fatalf("rebuildWorld: %v", err)
	}
	checked, err := replayFrames(w, dir, 0)
	if err != nil {
		t.Fatalf("replayFrames: %v", err)
	}
	if checked != 90 {
		t.Fatalf("checked: got %d want 90", checked)
	}
}

func TestReplayStopsAtToTick(t *testing.T) {
	dir := recordSession(t)
	m, _ := session.Read(dir)
	w, err := rebuildWorld(m, "", "")
	if err != nil {
		t.Fatalf("rebuildWorld: %v", err)
	}
	checked, err := replayFrames(w, dir, 9)
	if err != nil {
		t.Fatalf("replayFrames: %v", err)
	}
	if checked != 10 {
		t.Fatalf("checked: got %d want 10", checked)
	}
}

func TestReplayDetectsWrongSeed(t *testing.T) {
	dir := recordSession(t)
	m, _ := session.Read(dir)
	m.Seed = 100
	w, err := rebuildWorld(m, "", "")
	if err != nil {
		t.Fatalf("rebuildWorld: %v", err)
	}
	_, err = replayFrames(w, dir, 0)
	if err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("expected digest mismatch, got %v", err)
	}
}

func TestRebuildRejectsTuningDigestMismatch(t *testing.T) {
	dir := recordSession(t)
	m, _ := session.Read(dir)
	m.TuningDigest = "deadbeef"
	if _, err := rebuildWorld(m, "", ""); err == nil || !strings.Contains(err.Error(), "tuning digest mismatch") {
		t.Fatalf("expected tuning digest mismatch, got %v", err)
	}
}
