package viewer

import (
	"fmt"
	"math"
	"strings"

	"museumbot/internal/sim/world"
	modelpkg "museumbot/internal/sim/world/kernel/model"
)

const (
	screenWidth  = 960
	screenHeight = 640

	mapMargin  = 24
	mapWidth   = 360 // top-down map occupies the left column
	textColumn = mapWidth + 2*mapMargin
	wrapWidth  = 56 // debug font is 6px wide
)

// mapView projects the room's X/Z plane onto a screen rectangle, keeping aspect ratio.
// +X goes right and +Z goes down.
type mapView struct {
	bounds   modelpkg.Bounds
	x0, y0   float64
	scale    float64
	pxW, pxH float64
}

func newMapView(b modelpkg.Bounds, x0, y0, maxW, maxH float64) mapView {
	dx := b.Max.X - b.Min.X
	dz := b.Max.Z - b.Min.Z
	scale := 1.0
	if dx > 0 && dz > 0 {
		scale = math.Min(maxW/dx, maxH/dz)
	}
	return mapView{bounds: b, x0: x0, y0: y0, scale: scale, pxW: dx * scale, pxH: dz * scale}
}

func (m mapView) project(p modelpkg.Vec3) (float32, float32) {
	return float32(m.x0 + (p.X-m.bounds.Min.X)*m.scale), float32(m.y0 + (p.Z-m.bounds.Min.Z)*m.scale)
}

// statusLines is the text shown under the help block.
func statusLines(s world.Snapshot) []string {
	lines := []string{
		fmt.Sprintf("tick %d  mode %s", s.Tick, s.Mode),
		fmt.Sprintf("pos (%.2f, %.2f, %.2f)  heading %.0f", s.Pos.X, s.Pos.Y, s.Pos.Z, s.Heading),
	}
	switch {
	case s.Candidate != nil:
		lines = append(lines, "nearby: "+s.Candidate.Title+"  [E] to scan")
	default:
		lines = append(lines, "nearby: none")
	}
	if s.Scan.Phase == "SCANNING" {
		lines = append(lines, fmt.Sprintf("scanning %s %3.0f%%", s.Scan.ExhibitID, s.Scan.Progress*100))
	}
	return lines
}

// panelLines renders the info panel body, or nil when hidden.
func panelLines(p world.PanelView) []string {
	if !p.Showing || p.Exhibit == nil {
		return nil
	}
	e := p.Exhibit
	lines := []string{
		e.Title,
		e.Artist + ", " + e.YearLabel(),
		"",
	}
	lines = append(lines, wrap(e.Description, wrapWidth)...)
	lines = append(lines, "", fmt.Sprintf("closes in %.1fs", p.Remaining))
	return lines
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > width {
			out = append(out, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(out, cur)
}
