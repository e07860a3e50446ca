package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"museumbot/internal/persistence/indexdb"
	"museumbot/internal/protocol"
	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
	"museumbot/internal/sim/world"
	modelpkg "museumbot/internal/sim/world/kernel/model"
)

type fakeIndex struct {
	audits []world.AuditEntry
}

func (f *fakeIndex) WriteAudit(e world.AuditEntry) error {
	f.audits = append(f.audits, e)
	return nil
}
func (f *fakeIndex) Close() error                         { return nil }
func (f *fakeIndex) RecordSession(row indexdb.SessionRow) {}
func (f *fakeIndex) Stats() indexdb.Stats {
	return indexdb.Stats{QueueDepth: 2, QueueCapacity: 8, DropAuditTotal: 3}
}
func (f *fakeIndex) RecentScans(ctx context.Context, limit int) ([]indexdb.ScanRow, error) {
	return []indexdb.ScanRow{{ExhibitID: "a", StartedTick: 1, EndedTick: 9, Outcome: "COMPLETE"}}, nil
}
func (f *fakeIndex) CompletedScanCounts(ctx context.Context) (map[string]int, error) {
	return map[string]int{"a": 1}, nil
}

func newTestRuntime(t *testing.T, idx runtimeIndex) httpRuntime {
	t.Helper()
	cats, err := catalogs.FromExhibits([]modelpkg.Exhibit{
		{ID: "a", Pos: modelpkg.Vec3{X: 0, Y: -1.75, Z: -2.5}, Title: "A", Year: 10},
	})
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	w, err := world.New(world.WorldConfig{ID: "w1", Seed: 1}, cats, tuning.Defaults())
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return httpRuntime{worldID: "w1", w: w, idx: idx}
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	b, _ := io.ReadAll(rr.Body)
	return rr.Code, string(b)
}

func TestHealthz(t *testing.T) {
	mux := newMux(newTestRuntime(t, nil))
	code, body := get(t, mux, "/healthz")
	if code != 200 || body != "ok" {
		t.Fatalf("healthz: %d %q", code, body)
	}
}

func TestMetricsExposition(t *testing.T) {
	rt := newTestRuntime(t, &fakeIndex{})
	rt.w.StepOnce(protocol.Input{Pressed: protocol.SetOf(protocol.StartScan)})
	rt.w.StepOnce(protocol.Input{})

	code, body := get(t, newMux(rt), "/metrics")
	if code != 200 {
		t.Fatalf("metrics status: %d", code)
	}
	for _, want := range []string{
		`museum_world_tick{world="w1"} 2`,
		`museum_avatar_mode{world="w1",mode="MANUAL"} 1`,
		`museum_scans_total{world="w1",outcome="started"} 1`,
		`museum_index_queue_depth 2`,
		`museum_index_dropped_total{kind="audit"} 3`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q in:\n%s", want, body)
		}
	}
}

func TestScansDisabledWithoutIndex(t *testing.T) {
	code, _ := get(t, newMux(newTestRuntime(t, nil)), "/v1/scans")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d want 503", code)
	}
}

func TestScansJSON(t *testing.T) {
	mux := newMux(newTestRuntime(t, &fakeIndex{}))
	if code, _ := get(t, mux, "/v1/scans?limit=0"); code != http.StatusBadRequest {
		t.Fatalf("bad limit status: %d", code)
	}
	code, body := get(t, mux, "/v1/scans?limit=5")
	if code != 200 {
		t.Fatalf("status: %d body=%s", code, body)
	}
	var resp struct {
		WorldID   string            `json:"world_id"`
		Recent    []indexdb.ScanRow `json:"recent"`
		Completed map[string]int    `json:"completed_by_exhibit"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.WorldID != "w1" || len(resp.Recent) != 1 || resp.Recent[0].Outcome != "COMPLETE" || resp.Completed["a"] != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestMultiAuditLoggerFansOut(t *testing.T) {
	a, b := &fakeIndex{}, &fakeIndex{}
	m := multiAuditLogger{a: a, b: b}
	_ = m.WriteAudit(world.AuditEntry{Tick: 1, Action: "SCAN_START"})
	if len(a.audits) != 1 || len(b.audits) != 1 {
		t.Fatalf("fan out: a=%d b=%d", len(a.audits), len(b.audits))
	}
}
