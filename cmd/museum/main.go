package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"museumbot/internal/config"
	"museumbot/internal/persistence/indexdb"
	persistlog "museumbot/internal/persistence/log"
	"museumbot/internal/persistence/session"
	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
	"museumbot/internal/sim/world"
	"museumbot/internal/transport/observer"
	"museumbot/internal/viewer"
)

func main() {
	logger := log.New(os.Stdout, "[museum] ", log.LstdFlags|log.Lmicroseconds)

	env, err := config.LoadEnv()
	if err != nil {
		logger.Fatalf("%v", err)
	}

	var (
		addr        = flag.String("addr", env.Addr, "http listen address for observer and metrics (empty to disable)")
		worldID     = flag.String("world", "museum_1", "world id")
		seed        = flag.Int64("seed", env.Seed, "seed for random teleports")
		configDir   = flag.String("configs", env.ConfigDir, "config directory")
		dataDir     = flag.String("data", env.DataDir, "runtime data directory")
		tuningPath  = flag.String("tuning", env.TuningPath, "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB   = flag.Bool("disable_db", env.DisableDB, "disable the sqlite scan index")
		headless    = flag.Bool("headless", env.Headless, "run without a window")
		ticks       = flag.Uint64("ticks", env.Ticks, "headless: stop after this many ticks (0 = until signal)")
		tour        = flag.Bool("tour", false, "headless: patrol and scan on a script instead of idling")
		allowRemote = flag.Bool("observer_allow_remote", env.AllowRemote, "serve observer routes to non-loopback clients")
	)
	flag.Parse()

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
		tp = ""
	}

	w, err := world.New(world.WorldConfig{
		ID:         *worldID,
		TickRateHz: tune.TickRateHz,
		Seed:       *seed,
	}, cats, tune)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w.SetLogger(logger)

	sessionID := uuid.NewString()
	sessionDir := filepath.Join(*dataDir, "sessions", sessionID)
	startedAt := time.Now().UTC()
	if err := session.Write(sessionDir, session.ManifestV1{
		SessionID:      sessionID,
		WorldID:        *worldID,
		Seed:           *seed,
		TickRateHz:     w.TickRateHz(),
		TuningPath:     tp,
		TuningDigest:   tune.Digest,
		ConfigDir:      *configDir,
		ExhibitsDigest: cats.Exhibits.Digest,
		StartedAt:      startedAt,
	}); err != nil {
		logger.Fatalf("write session manifest: %v", err)
	}
	logger.Printf("session %s (%d exhibits) -> %s", sessionID, w.Exhibits().Len(), sessionDir)

	// Optional: read-model index (does not affect sim determinism).
	idx, err := openRuntimeIndex(*dataDir, sessionID, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		idx.RecordSession(indexdb.SessionRow{
			SessionID:      sessionID,
			WorldID:        *worldID,
			Seed:           *seed,
			TickRateHz:     w.TickRateHz(),
			TuningDigest:   tune.Digest,
			ExhibitsDigest: cats.Exhibits.Digest,
			StartedAt:      startedAt,
		})
	}

	frameLog := persistlog.NewFrameLogger(sessionDir)
	auditLog := persistlog.NewAuditLogger(sessionDir)
	defer frameLog.Close()
	defer auditLog.Close()
	w.SetFrameLogger(frameLog)
	if idx != nil {
		w.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})
	} else {
		w.SetAuditLogger(auditLog)
	}

	ctx, cancel := signalContext()
	defer cancel()

	hub := observer.NewHub()
	snapCh := make(chan world.Snapshot, 4)
	w.SetSnapshotSink(snapCh)
	go hub.Run(ctx, snapCh)

	var srv *http.Server
	if *addr != "" {
		obs := observer.NewServer(w, hub, sessionID, logger)
		obs.AllowRemote = *allowRemote
		srv = &http.Server{
			Addr: *addr,
			Handler: newMux(httpRuntime{
				worldID: *worldID,
				w:       w,
				idx:     idx,
				obs:     obs,
				hub:     hub,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Printf("listening on %s", *addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("ListenAndServe: %v", err)
			}
		}()
	}

	if *headless {
		cfg := viewer.HeadlessConfig{Ticks: *ticks}
		if *tour {
			cfg.Input = &viewer.Tour{ScanEvery: uint64(w.TickRateHz())}
		}
		err = viewer.RunHeadless(ctx, w, cfg)
	} else {
		err = viewer.RunWindow(ctx, w, logger)
	}
	if err != nil {
		logger.Printf("run: %v", err)
	}
	logger.Printf("stopped at tick %d", w.CurrentTick())

	cancel()
	if srv != nil {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
