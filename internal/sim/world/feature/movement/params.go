package movement

import modelpkg "museumbot/internal/sim/world/kernel/model"

const (
	DefaultTravelSpeed    = 5.0
	DefaultArrivalEpsilon = 0.1
)

type Params struct {
	Bounds         modelpkg.Bounds
	TravelSpeed    float64 // units/s for patrol and directed travel
	ArrivalEpsilon float64
}

func normalizeParams(p Params) Params {
	if p.TravelSpeed <= 0 {
		p.TravelSpeed = DefaultTravelSpeed
	}
	if p.ArrivalEpsilon <= 0 {
		p.ArrivalEpsilon = DefaultArrivalEpsilon
	}
	return p
}

// Mode is the navigator's control mode.
type Mode uint8

const (
	ModeManual Mode = iota
	ModeAutonomousPatrol
	ModeDirectedTravel
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "MANUAL"
	case ModeAutonomousPatrol:
		return "PATROL"
	case ModeDirectedTravel:
		return "DIRECTED"
	default:
		return "UNKNOWN"
	}
}

// MoveDir selects the basis for a manual move.
type MoveDir uint8

const (
	MoveForward MoveDir = iota
	MoveBackward
	StrafeLeft
	StrafeRight
	MoveUp
	MoveDown
)
