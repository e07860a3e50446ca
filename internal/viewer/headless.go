package viewer

import (
	"context"
	"errors"

	"museumbot/internal/protocol"
	"museumbot/internal/sim/world"
)

// HeadlessConfig controls the no-window runner.
type HeadlessConfig struct {
	Ticks uint64 // 0 runs until ctx is done or quit
	Input world.InputSource
}

// RunHeadless steps w on its own ticker without opening a window. Reaching the tick limit,
// a processed Quit and ctx cancellation all return nil.
func RunHeadless(ctx context.Context, w *world.World, cfg HeadlessConfig) error {
	src := cfg.Input
	if src == nil {
		src = world.IdleInput
	}
	if cfg.Ticks > 0 {
		limit := cfg.Ticks
		inner := src
		src = world.InputFunc(func() protocol.Input {
			// Polled right before the step that would complete tick n.
			if w.CurrentTick()+1 >= limit {
				defer w.Stop()
			}
			return inner.NextInput()
		})
	}
	err := w.Run(ctx, src)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Tour is a scripted input source for headless demos: it starts patrolling, then every
// scanEvery ticks presses START_SCAN. Guard rejections are expected and harmless.
type Tour struct {
	ScanEvery uint64
	n         uint64
}

func (t *Tour) NextInput() protocol.Input {
	t.n++
	if t.n == 1 {
		return protocol.Input{Pressed: protocol.SetOf(protocol.TogglePatrol)}
	}
	if t.ScanEvery > 0 && t.n%t.ScanEvery == 0 {
		return protocol.Input{Pressed: protocol.SetOf(protocol.StartScan)}
	}
	return protocol.Input{}
}
