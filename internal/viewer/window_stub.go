//go:build !cgo

package viewer

import (
	"context"
	"errors"
	"log"

	"museumbot/internal/sim/world"
)

func RunWindow(_ context.Context, _ *world.World, _ *log.Logger) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1, or use -headless)")
}
