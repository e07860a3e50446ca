package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"museumbot/internal/sim/world"
	"museumbot/internal/transport/observer"
)

type httpRuntime struct {
	worldID string
	w       *world.World
	idx     runtimeIndex
	obs     *observer.Server
	hub     *observer.Hub
}

func newMux(rt httpRuntime) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", rt.metricsHandler)
	mux.HandleFunc("/v1/scans", rt.scansHandler)
	if rt.obs != nil {
		mux.HandleFunc("/v1/observer/bootstrap", rt.obs.BootstrapHandler())
		mux.HandleFunc("/v1/observer/ws", rt.obs.WSHandler())
	}
	return mux
}

func (rt httpRuntime) metricsHandler(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	m := rt.w.Metrics()
	tick := rt.w.CurrentTick()
	if m.Tick != 0 {
		tick = m.Tick
	}
	id := rt.worldID

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP museum_world_tick Current world tick.\n")
	fmt.Fprintf(rw, "# TYPE museum_world_tick gauge\n")
	fmt.Fprintf(rw, "museum_world_tick{world=%q} %d\n", id, tick)

	fmt.Fprintf(rw, "# HELP museum_avatar_mode Current navigation mode (1 for the active mode).\n")
	fmt.Fprintf(rw, "# TYPE museum_avatar_mode gauge\n")
	for _, mode := range []string{"MANUAL", "PATROL", "DIRECTED"} {
		v := 0
		if m.Mode == mode {
			v = 1
		}
		fmt.Fprintf(rw, "museum_avatar_mode{world=%q,mode=%q} %d\n", id, mode, v)
	}

	fmt.Fprintf(rw, "# HELP museum_scans_total Scans by outcome.\n")
	fmt.Fprintf(rw, "# TYPE museum_scans_total counter\n")
	fmt.Fprintf(rw, "museum_scans_total{world=%q,outcome=%q} %d\n", id, "started", m.ScansStarted)
	fmt.Fprintf(rw, "museum_scans_total{world=%q,outcome=%q} %d\n", id, "completed", m.ScansCompleted)
	fmt.Fprintf(rw, "museum_scans_total{world=%q,outcome=%q} %d\n", id, "cancelled", m.ScansCancelled)

	fmt.Fprintf(rw, "# HELP museum_invalid_operations_total Dropped commands whose guard failed.\n")
	fmt.Fprintf(rw, "# TYPE museum_invalid_operations_total counter\n")
	fmt.Fprintf(rw, "museum_invalid_operations_total{world=%q} %d\n", id, m.InvalidOps)

	fmt.Fprintf(rw, "# HELP museum_teleports_total Random teleports.\n")
	fmt.Fprintf(rw, "# TYPE museum_teleports_total counter\n")
	fmt.Fprintf(rw, "museum_teleports_total{world=%q} %d\n", id, m.Teleports)

	panel := 0
	if m.PanelShowing {
		panel = 1
	}
	fmt.Fprintf(rw, "# HELP museum_panel_showing Whether the info panel is visible.\n")
	fmt.Fprintf(rw, "# TYPE museum_panel_showing gauge\n")
	fmt.Fprintf(rw, "museum_panel_showing{world=%q} %d\n", id, panel)

	fmt.Fprintf(rw, "# HELP museum_world_step_ms Last step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE museum_world_step_ms gauge\n")
	fmt.Fprintf(rw, "museum_world_step_ms{world=%q} %.3f\n", id, m.StepMS)

	if rt.hub != nil {
		fmt.Fprintf(rw, "# HELP museum_observer_clients Connected observer streams.\n")
		fmt.Fprintf(rw, "# TYPE museum_observer_clients gauge\n")
		fmt.Fprintf(rw, "museum_observer_clients{world=%q} %d\n", id, rt.hub.Len())
	}

	if rt.idx != nil {
		s := rt.idx.Stats()
		fmt.Fprintf(rw, "# HELP museum_index_queue_depth Index writer backlog.\n")
		fmt.Fprintf(rw, "# TYPE museum_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "museum_index_queue_depth %d\n", s.QueueDepth)

		fmt.Fprintf(rw, "# HELP museum_index_dropped_total Index writes dropped because the queue was full.\n")
		fmt.Fprintf(rw, "# TYPE museum_index_dropped_total counter\n")
		fmt.Fprintf(rw, "museum_index_dropped_total{kind=%q} %d\n", "audit", s.DropAuditTotal)
		fmt.Fprintf(rw, "museum_index_dropped_total{kind=%q} %d\n", "session", s.DropSessionTotal)
	}
}

func (rt httpRuntime) scansHandler(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if rt.idx == nil {
		http.Error(rw, "index disabled", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			http.Error(rw, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	recent, err := rt.idx.RecentScans(ctx, limit)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	counts, err := rt.idx.CompletedScanCounts(ctx)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(struct {
		WorldID   string         `json:"world_id"`
		Recent    any            `json:"recent"`
		Completed map[string]int `json:"completed_by_exhibit"`
	}{
		WorldID:   rt.worldID,
		Recent:    recent,
		Completed: counts,
	})
}
