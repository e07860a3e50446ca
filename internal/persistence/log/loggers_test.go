package log

import (
	"path/filepath"
	"testing"
	"time"

	"museumbot/internal/sim/world"
)

func TestFrameLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewFrameLogger(dir)
	want := []world.FrameLogEntry{
		{Tick: 0, DT: 1.0 / 60, Pressed: []string{"START_SCAN"}, Digest: "a"},
		{Tick: 1, DT: 1.0 / 60, Held: []string{"MOVE_FORWARD", "ROTATE_CW"}, Digest: "b"},
	}
	for _, e := range want {
		if err := l.WriteFrame(e); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []world.FrameLogEntry
	if err := ReadFrames(dir, func(e world.FrameLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d frames want %d", len(got), len(want))
	}
	if got[1].Held[1] != "ROTATE_CW" || got[1].Digest != "b" || got[0].DT != want[0].DT {
		t.Fatalf("frames: %+v", got)
	}
}

func TestWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "audit")
	now := time.Date(2026, 1, 2, 3, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	if err := w.Write(world.AuditEntry{Tick: 1, Action: "SCAN_START"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := w.Write(world.AuditEntry{Tick: 2, Action: "SCAN_COMPLETE"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(dir, "audit")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "audit-2026-01-02-03.jsonl.zst" {
		t.Fatalf("files=%v", files)
	}

	var actions []string
	for _, f := range files {
		if err := readFile(f, func(line []byte) error {
			actions = append(actions, string(line))
			return nil
		}); err != nil {
			t.Fatalf("readFile: %v", err)
		}
	}
	if len(actions) != 2 {
		t.Fatalf("lines=%v", actions)
	}
}

func TestAuditLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	if err := l.WriteAudit(world.AuditEntry{Tick: 3, Action: "START_SCAN", Code: "E_INVALID_OPERATION", Reason: "E_NO_CANDIDATE"}); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}
	_ = l.Close()

	var got []world.AuditEntry
	if err := ReadAudits(dir, func(e world.AuditEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadAudits: %v", err)
	}
	if len(got) != 1 || got[0].Reason != "E_NO_CANDIDATE" {
		t.Fatalf("audits=%+v", got)
	}
}
