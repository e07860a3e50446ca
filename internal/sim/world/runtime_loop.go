package world

import (
	"context"
	"time"

	"museumbot/internal/protocol"
)

// InputSource is polled once per tick by Run, on the loop goroutine.
type InputSource interface {
	NextInput() protocol.Input
}

type InputFunc func() protocol.Input

func (f InputFunc) NextInput() protocol.Input { return f() }

// IdleInput never presses anything.
var IdleInput InputSource = InputFunc(func() protocol.Input { return protocol.Input{} })

// Run steps the world at TickRateHz with a fixed dt until ctx is done, Stop is called or a
// Quit command is processed. A latched quit returns nil.
func (w *World) Run(ctx context.Context, src InputSource) error {
	if src == nil {
		src = IdleInput
	}
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case <-ticker.C:
			w.StepOnce(src.NextInput())
			if w.quit {
				return nil
			}
			select {
			case <-w.stop:
				return nil
			default:
			}
		}
	}
}

func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }
