package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the stepping goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`
	Mode string `json:"mode"`

	ScansStarted   uint64 `json:"scans_started"`
	ScansCompleted uint64 `json:"scans_completed"`
	ScansCancelled uint64 `json:"scans_cancelled"`
	InvalidOps     uint64 `json:"invalid_ops"`
	Teleports      uint64 `json:"teleports"`

	PanelShowing bool    `json:"panel_showing"`
	StepMS       float64 `json:"step_ms"`
}

// counters are owned by the stepping goroutine and copied into WorldMetrics after each step.
type counters struct {
	scansStarted   uint64
	scansCompleted uint64
	scansCancelled uint64
	invalidOps     uint64
	teleports      uint64
}

func (w *World) storeMetrics(stepMS float64) {
	w.metrics.Store(WorldMetrics{
		Tick:           w.tick.Load(),
		Mode:           w.nav.Mode().String(),
		ScansStarted:   w.counters.scansStarted,
		ScansCompleted: w.counters.scansCompleted,
		ScansCancelled: w.counters.scansCancelled,
		InvalidOps:     w.counters.invalidOps,
		Teleports:      w.counters.teleports,
		PanelShowing:   !w.panel.Hidden(),
		StepMS:         stepMS,
	})
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
