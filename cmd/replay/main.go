package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	persistlog "museumbot/internal/persistence/log"
	"museumbot/internal/persistence/session"
	"museumbot/internal/protocol"
	"museumbot/internal/sim/catalogs"
	"museumbot/internal/sim/tuning"
	"museumbot/internal/sim/world"
)

var errStop = errors.New("stop")

func main() {
	var (
		sessionDir = flag.String("session", "", "session dir containing session.json and frames/")
		configDir  = flag.String("configs", "", "config directory (default: from session.json)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: from session.json)")
		toTick     = flag.Uint64("to_tick", 0, "stop after this tick (inclusive, optional)")
	)
	flag.Parse()

	if *sessionDir == "" {
		fmt.Fprintln(os.Stderr, "missing -session")
		os.Exit(2)
	}

	m, err := session.Read(*sessionDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read session:", err)
		os.Exit(1)
	}
	fmt.Printf("session v%d id=%s world=%s seed=%d tick_rate=%d started=%s\n",
		m.Version, m.SessionID, m.WorldID, m.Seed, m.TickRateHz, m.StartedAt.Format("2006-01-02T15:04:05Z"))

	w, err := rebuildWorld(m, *configDir, *tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	checked, err := replayFrames(w, *sessionDir, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	if checked == 0 {
		fmt.Fprintln(os.Stderr, "no frames found in", *sessionDir)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d ticks\n", checked)
}

// rebuildWorld constructs a fresh world with the recorded seed, catalog and tuning, and
// refuses to continue when the inputs on disk no longer match the recorded digests.
func rebuildWorld(m session.ManifestV1, configDir, tuningPath string) (*world.World, error) {
	if strings.TrimSpace(configDir) == "" {
		configDir = m.ConfigDir
	}
	cats, err := catalogs.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load catalogs: %w", err)
	}
	if m.ExhibitsDigest != "" && cats.Exhibits.Digest != m.ExhibitsDigest {
		return nil, fmt.Errorf("exhibits digest mismatch: session=%s disk=%s", m.ExhibitsDigest, cats.Exhibits.Digest)
	}

	if strings.TrimSpace(tuningPath) == "" {
		tuningPath = m.TuningPath
	}
	tune := tuning.Defaults()
	if tuningPath != "" {
		tune, err = tuning.Load(tuningPath)
		if err != nil {
			return nil, fmt.Errorf("load tuning: %w", err)
		}
	}
	if tune.Digest != m.TuningDigest {
		return nil, fmt.Errorf("tuning digest mismatch: session=%q disk=%q", m.TuningDigest, tune.Digest)
	}

	w, err := world.New(world.WorldConfig{
		ID:         m.WorldID,
		TickRateHz: m.TickRateHz,
		Seed:       m.Seed,
	}, cats, tune)
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	return w, nil
}

func replayFrames(w *world.World, sessionDir string, toTick uint64) (uint64, error) {
	var checked uint64
	err := persistlog.ReadFrames(sessionDir, func(entry world.FrameLogEntry) error {
		if toTick != 0 && entry.Tick > toTick {
			return errStop
		}
		if entry.Tick != w.CurrentTick() {
			return fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}
		held, err := protocol.ParseCommandSet(entry.Held)
		if err != nil {
			return fmt.Errorf("tick %d held: %w", entry.Tick, err)
		}
		pressed, err := protocol.ParseCommandSet(entry.Pressed)
		if err != nil {
			return fmt.Errorf("tick %d pressed: %w", entry.Tick, err)
		}

		tick, gotDigest := w.Step(protocol.Input{Held: held, Pressed: pressed}, entry.DT)

		// Sanity check: Step should have stepped the same tick.
		if tick != entry.Tick {
			return fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
		}
		if gotDigest != entry.Digest {
			return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, gotDigest, entry.Digest)
		}
		checked++
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return checked, err
}
