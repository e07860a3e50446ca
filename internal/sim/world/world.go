package world

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
	"museumbot/internal/sim/world/feature/infopanel"
	"museumbot/internal/sim/world/feature/movement"
	"museumbot/internal/sim/world/feature/proximity"
	"museumbot/internal/sim/world/feature/scan"
	modelpkg "museumbot/internal/sim/world/kernel/model"
	"museumbot/internal/sim/world/logic/mathx"
)

type WorldConfig struct {
	ID         string
	TickRateHz int // 0 = tuning value
	Seed       int64
}

// World is the interaction coordinator: it owns the navigator, scan session and info panel
// and advances them in a fixed order once per Step.
// All state must be accessed only from the goroutine calling Step (or Run). Snapshot,
// Metrics, CurrentTick and the fixed configuration (Bounds, Exhibits, Tuning, ID) are
// safe from any goroutine.
type World struct {
	cfg      WorldConfig
	tuning   tuning.Tuning
	exhibits *modelpkg.Registry
	bounds   modelpkg.Bounds // fixed at New; safe to read from any goroutine
	logger   *log.Logger

	tick atomic.Uint64

	nav   *movement.Navigator
	scan  scan.Session
	panel *infopanel.Panel
	rng   *mathx.Rand

	patrol    []modelpkg.Vec3
	candidate string
	quit      bool

	// Optional sinks (may be nil). Implemented in internal/persistence/*.
	frameLogger FrameLogger
	auditLogger AuditLogger

	// Optional snapshot sink (may be nil). Sends never block the step.
	snapshotSink chan<- Snapshot

	snap     atomic.Pointer[Snapshot]
	metrics  atomic.Value // WorldMetrics
	counters counters

	stop     chan struct{}
	stopOnce sync.Once
}

type FrameLogger interface {
	WriteFrame(entry FrameLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// FrameLogEntry is everything needed to re-run one Step.
type FrameLogEntry struct {
	Tick    uint64   `json:"tick"`
	DT      float64  `json:"dt"`
	Held    []string `json:"held,omitempty"`
	Pressed []string `json:"pressed,omitempty"`
	Digest  string   `json:"digest"`
}

type AuditEntry struct {
	Tick      uint64 `json:"tick"`
	Action    string `json:"action"` // e.g. "SCAN_START"
	ExhibitID string `json:"exhibit_id,omitempty"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func New(cfg WorldConfig, cats *catalogs.Catalogs, tun tuning.Tuning) (*World, error) {
	if cats == nil || cats.Exhibits.Registry == nil {
		return nil, fmt.Errorf("world: missing exhibit catalog")
	}
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = tun.TickRateHz
	}

	bounds := modelpkg.Bounds{Min: vec(tun.Bounds.Min), Max: vec(tun.Bounds.Max)}
	w := &World{
		cfg:      cfg,
		tuning:   tun,
		exhibits: cats.Exhibits.Registry,
		bounds:   bounds,
		logger:   log.New(io.Discard, "", 0),
		nav: movement.New(vec(tun.StartPos), movement.Params{
			Bounds:         bounds,
			TravelSpeed:    tun.TravelSpeed,
			ArrivalEpsilon: tun.ArrivalEpsilon,
		}),
		panel: infopanel.New(tun.InfoDisplaySec),
		rng:   mathx.NewRand(cfg.Seed),
		stop:  make(chan struct{}),
	}
	for _, p := range tun.PatrolWaypoints {
		w.patrol = append(w.patrol, vec(p))
	}
	w.refreshCandidate()
	w.publish(w.stateDigest(0))
	return w, nil
}

func vec(a [3]float64) modelpkg.Vec3 { return modelpkg.Vec3{X: a[0], Y: a[1], Z: a[2]} }

func (w *World) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}
func (w *World) SetFrameLogger(l FrameLogger)       { w.frameLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)       { w.auditLogger = l }
func (w *World) SetSnapshotSink(ch chan<- Snapshot) { w.snapshotSink = ch }
func (w *World) CurrentTick() uint64                { return w.tick.Load() }
func (w *World) Exhibits() *modelpkg.Registry       { return w.exhibits }
func (w *World) Tuning() tuning.Tuning              { return w.tuning }
func (w *World) Bounds() modelpkg.Bounds            { return w.bounds }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Seed() int64 { return w.cfg.Seed }

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) refreshCandidate() {
	w.candidate, _ = proximity.FindNearestWithin(w.exhibits.View(), w.nav.Pos(), w.tuning.ProximityThreshold)
}
