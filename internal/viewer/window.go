//go:build cgo

package viewer

import (
	"context"
	"image/color"
	"log"
	"time"

	"museumbot/internal/sim/world"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// maxFrameDT caps the wall-clock step after a stall (window drag, debugger).
const maxFrameDT = 0.1

var ebitenKeys = map[string]ebiten.Key{
	"W": ebiten.KeyW, "S": ebiten.KeyS, "A": ebiten.KeyA, "D": ebiten.KeyD,
	"C": ebiten.KeyC, "Z": ebiten.KeyZ, "Q": ebiten.KeyQ, "R": ebiten.KeyR,
	"E": ebiten.KeyE, "F": ebiten.KeyF, "T": ebiten.KeyT, "P": ebiten.KeyP,
	"X": ebiten.KeyX, "Escape": ebiten.KeyEscape,
}

type ebitenKeyState struct{}

func (ebitenKeyState) Down(name string) bool {
	k, ok := ebitenKeys[name]
	return ok && ebiten.IsKeyPressed(k)
}

func (ebitenKeyState) JustPressed(name string) bool {
	k, ok := ebitenKeys[name]
	return ok && inpututil.IsKeyJustPressed(k)
}

var (
	colBackground = color.RGBA{0x14, 0x16, 0x1c, 0xff}
	colRoom       = color.RGBA{0x2a, 0x2e, 0x38, 0xff}
	colWall       = color.RGBA{0x80, 0x86, 0x96, 0xff}
	colExhibit    = color.RGBA{0xb0, 0x8d, 0x57, 0xff}
	colCandidate  = color.RGBA{0xff, 0xd2, 0x4a, 0xff}
	colAvatar     = color.RGBA{0x4a, 0xc8, 0xff, 0xff}
	colTarget     = color.RGBA{0x7c, 0xff, 0x8a, 0xff}
	colBar        = color.RGBA{0x4a, 0xc8, 0xff, 0xff}
	colPanel      = color.RGBA{0x00, 0x00, 0x00, 0xc0}
)

// RunWindow opens the desktop window and steps w once per frame with sampled keys.
// It blocks until the window closes, ctx is done or a Quit command is processed.
func RunWindow(ctx context.Context, w *world.World, logger *log.Logger) error {
	g := &windowGame{
		ctx:      ctx,
		w:        w,
		logger:   logger,
		bindings: DefaultBindings,
		help:     HelpLines(DefaultBindings),
	}
	ebiten.SetWindowTitle("Museum (" + w.ID() + ")")
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetTPS(w.TickRateHz())
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

type windowGame struct {
	ctx      context.Context
	w        *world.World
	logger   *log.Logger
	bindings []Binding
	help     []string
	last     time.Time
}

func (g *windowGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	now := time.Now()
	dt := g.w.FixedDT()
	if !g.last.IsZero() {
		dt = now.Sub(g.last).Seconds()
	}
	g.last = now
	if dt > maxFrameDT {
		dt = maxFrameDT
	}

	g.w.Step(Sample(g.bindings, ebitenKeyState{}), dt)
	if g.w.QuitRequested() {
		if g.logger != nil {
			g.logger.Printf("quit requested at tick %d", g.w.CurrentTick())
		}
		return ebiten.Termination
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	s := g.w.Snapshot()

	mv := newMapView(g.w.Bounds(), mapMargin, mapMargin, mapWidth, screenHeight-2*mapMargin)
	vector.DrawFilledRect(screen, float32(mv.x0), float32(mv.y0), float32(mv.pxW), float32(mv.pxH), colRoom, false)
	vector.StrokeRect(screen, float32(mv.x0), float32(mv.y0), float32(mv.pxW), float32(mv.pxH), 2, colWall, false)

	for _, e := range g.w.Exhibits().View() {
		x, y := mv.project(e.Pos)
		c := colExhibit
		if e.ID == s.CandidateID {
			c = colCandidate
			r := float32(g.w.Tuning().ProximityThreshold * mv.scale)
			vector.StrokeCircle(screen, x, y, r, 1, colCandidate, true)
		}
		vector.DrawFilledCircle(screen, x, y, 7, c, true)
	}

	if s.Target != nil {
		tx, ty := mv.project(*s.Target)
		vector.StrokeLine(screen, tx-5, ty-5, tx+5, ty+5, 2, colTarget, true)
		vector.StrokeLine(screen, tx-5, ty+5, tx+5, ty-5, 2, colTarget, true)
	}

	ax, ay := mv.project(s.Pos)
	fx, fy := mv.project(s.Pos.Add(s.Front.Scale(0.5)))
	vector.DrawFilledCircle(screen, ax, ay, 6, colAvatar, true)
	vector.StrokeLine(screen, ax, ay, fx, fy, 2, colAvatar, true)

	y := mapMargin
	for _, line := range g.help {
		ebitenutil.DebugPrintAt(screen, line, textColumn, y)
		y += 16
	}
	y += 16
	for _, line := range statusLines(s) {
		ebitenutil.DebugPrintAt(screen, line, textColumn, y)
		y += 16
	}

	if s.Scan.Phase == "SCANNING" {
		const barW = 240
		vector.StrokeRect(screen, textColumn, float32(y), barW, 10, 1, colWall, false)
		vector.DrawFilledRect(screen, textColumn, float32(y), float32(barW*s.Scan.Progress), 10, colBar, false)
		y += 24
	}

	if lines := panelLines(s.Panel); lines != nil {
		h := float32(len(lines)*16 + 16)
		vector.DrawFilledRect(screen, textColumn-8, float32(y), screenWidth-textColumn-mapMargin+8, h, colPanel, false)
		y += 8
		for _, line := range lines {
			ebitenutil.DebugPrintAt(screen, line, textColumn, y)
			y += 16
		}
	}
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
