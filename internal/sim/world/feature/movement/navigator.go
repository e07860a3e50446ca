package movement

import (
	"math"

	modelpkg "museumbot/internal/sim/world/kernel/model"
	"museumbot/internal/sim/world/logic/mathx"
)

// RandSource supplies uniform values in [0,1).
type RandSource interface {
	Float64() float64
}

// State is a copy of the navigator's fields.
type State struct {
	Pos           modelpkg.Vec3
	Front         modelpkg.Vec3
	Heading       float64 // degrees, [0,360)
	Bounds        modelpkg.Bounds
	Mode          Mode
	Waypoints     []modelpkg.Vec3
	WaypointIndex int
	Target        *modelpkg.Vec3
}

// Navigator owns the avatar pose. Every method leaves Pos inside Bounds.
type Navigator struct {
	params Params

	pos     modelpkg.Vec3
	front   modelpkg.Vec3
	heading float64

	mode      Mode
	waypoints []modelpkg.Vec3
	wpIndex   int
	target    modelpkg.Vec3
	hasTarget bool
}

func New(start modelpkg.Vec3, p Params) *Navigator {
	p = normalizeParams(p)
	n := &Navigator{
		params: p,
		pos:    p.Bounds.Clamp(start),
	}
	n.setHeading(0)
	return n
}

func (n *Navigator) State() State {
	st := State{
		Pos:           n.pos,
		Front:         n.front,
		Heading:       n.heading,
		Bounds:        n.params.Bounds,
		Mode:          n.mode,
		WaypointIndex: n.wpIndex,
	}
	if len(n.waypoints) > 0 {
		st.Waypoints = append([]modelpkg.Vec3(nil), n.waypoints...)
	}
	if n.hasTarget {
		t := n.target
		st.Target = &t
	}
	return st
}

func (n *Navigator) Pos() modelpkg.Vec3   { return n.pos }
func (n *Navigator) Front() modelpkg.Vec3 { return n.front }
func (n *Navigator) Heading() float64     { return n.heading }
func (n *Navigator) Mode() Mode           { return n.mode }

// ApplyManualMove moves by dir*speed*dt in the facing basis and clamps to bounds.
// Manual input never changes the mode.
func (n *Navigator) ApplyManualMove(dir MoveDir, speed, dt float64) {
	dt = mathx.SanitizeDT(dt)
	if dt == 0 || speed == 0 || math.IsNaN(speed) {
		return
	}
	var basis modelpkg.Vec3
	switch dir {
	case MoveForward:
		basis = n.front
	case MoveBackward:
		basis = n.front.Scale(-1)
	case StrafeRight:
		basis = n.right()
	case StrafeLeft:
		basis = n.right().Scale(-1)
	case MoveUp:
		basis = modelpkg.WorldUp
	case MoveDown:
		basis = modelpkg.WorldUp.Scale(-1)
	default:
		return
	}
	n.pos = n.params.Bounds.Clamp(n.pos.Add(basis.Scale(speed * dt)))
}

// Rotate turns the heading by degPerSec*dt degrees.
func (n *Navigator) Rotate(degPerSec, dt float64) {
	dt = mathx.SanitizeDT(dt)
	if dt == 0 || math.IsNaN(degPerSec) || math.IsInf(degPerSec, 0) {
		return
	}
	n.setHeading(n.heading + degPerSec*dt)
}

// SetAutonomousPatrol installs a cyclic waypoint loop starting at the first point.
// An empty list is ignored and reported as false.
func (n *Navigator) SetAutonomousPatrol(waypoints []modelpkg.Vec3) bool {
	if len(waypoints) == 0 {
		return false
	}
	n.waypoints = make([]modelpkg.Vec3, len(waypoints))
	for i, wp := range waypoints {
		n.waypoints[i] = n.params.Bounds.Clamp(wp)
	}
	n.wpIndex = 0
	n.mode = ModeAutonomousPatrol
	n.setTarget(n.waypoints[0])
	return true
}

// TravelTo starts directed travel toward target. The navigator returns to manual on arrival.
func (n *Navigator) TravelTo(target modelpkg.Vec3) {
	n.mode = ModeDirectedTravel
	n.setTarget(n.params.Bounds.Clamp(target))
}

// TeleportToRandomPoint picks x and z uniformly inside the bounds, keeps the current
// height, and travels there.
func (n *Navigator) TeleportToRandomPoint(r RandSource) modelpkg.Vec3 {
	b := n.params.Bounds
	target := modelpkg.Vec3{
		X: mathx.Lerp(b.Min.X, b.Max.X, r.Float64()),
		Y: n.pos.Y,
		Z: mathx.Lerp(b.Min.Z, b.Max.Z, r.Float64()),
	}
	n.TravelTo(target)
	return n.target
}

// StopAutonomy returns control to manual. Installed waypoints are kept.
func (n *Navigator) StopAutonomy() {
	n.mode = ModeManual
	n.hasTarget = false
	n.target = modelpkg.Vec3{}
}

// Tick advances autonomous motion. It reports whether a target was reached this tick.
func (n *Navigator) Tick(dt float64) bool {
	dt = mathx.SanitizeDT(dt)
	if n.mode == ModeManual || !n.hasTarget {
		return false
	}

	step := n.params.TravelSpeed * dt
	delta := n.target.Sub(n.pos)
	dist := delta.Len()
	if dist <= step {
		n.pos = n.target
	} else if dist > 0 {
		n.pos = n.pos.Add(delta.Scale(step / dist))
	}
	n.pos = n.params.Bounds.Clamp(n.pos)

	if modelpkg.Distance(n.pos, n.target) >= n.params.ArrivalEpsilon {
		return false
	}
	switch n.mode {
	case ModeAutonomousPatrol:
		n.wpIndex = (n.wpIndex + 1) % len(n.waypoints)
		n.setTarget(n.waypoints[n.wpIndex])
	case ModeDirectedTravel:
		n.StopAutonomy()
	}
	return true
}

func (n *Navigator) setTarget(t modelpkg.Vec3) {
	n.target = t
	n.hasTarget = true
}

func (n *Navigator) setHeading(deg float64) {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	n.heading = deg
	rad := deg * math.Pi / 180
	n.front = modelpkg.Vec3{X: -math.Sin(rad), Z: -math.Cos(rad)}.Normalize()
}

func (n *Navigator) right() modelpkg.Vec3 {
	return n.front.Cross(modelpkg.WorldUp).Normalize()
}
