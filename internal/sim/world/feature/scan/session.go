package scan

import "errors"

// DefaultRate is the progress multiplier applied on top of dt/duration.
const DefaultRate = 1.5

var (
	ErrNotIdle      = errors.New("scan: session not idle")
	ErrNoCandidate  = errors.New("scan: no candidate exhibit")
	ErrPanelShowing = errors.New("scan: info panel is showing")
)

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseScanning:
		return "SCANNING"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// State is Idle, Scanning{ExhibitID, Progress} or Complete{ExhibitID}.
type State struct {
	Phase     Phase
	ExhibitID string
	Progress  float64
}

// Session is the timed scan of one exhibit: Idle -> Scanning -> Complete -> (Reset) Idle.
type Session struct {
	st State
}

func (s *Session) State() State { return s.st }

func (s *Session) Scanning() bool { return s.st.Phase == PhaseScanning }

// Start begins scanning candidateID. The session must be idle, the candidate present and
// the info panel hidden; otherwise nothing changes and the failed guard is returned.
func (s *Session) Start(candidateID string, panelHidden bool) error {
	switch {
	case s.st.Phase != PhaseIdle:
		return ErrNotIdle
	case candidateID == "":
		return ErrNoCandidate
	case !panelHidden:
		return ErrPanelShowing
	}
	s.st = State{Phase: PhaseScanning, ExhibitID: candidateID}
	return nil
}

// progressEpsilon absorbs rounding in summed dt/duration*rate increments.
const progressEpsilon = 1e-9

// Tick advances progress by dt/duration*rate, clamped to 1, and returns the exhibit id
// exactly once, on the tick that completes the scan. A non-positive rate falls back to
// DefaultRate.
func (s *Session) Tick(dt, duration, rate float64) (string, bool) {
	if s.st.Phase != PhaseScanning {
		return "", false
	}
	if rate <= 0 {
		rate = DefaultRate
	}
	switch {
	case duration <= 0:
		s.st.Progress = 1
	case dt > 0:
		s.st.Progress += dt / duration * rate
	}
	if s.st.Progress < 1-progressEpsilon {
		return "", false
	}
	s.st.Progress = 1
	s.st.Phase = PhaseComplete
	return s.st.ExhibitID, true
}

// Cancel aborts a running scan. It is a no-op outside Scanning.
func (s *Session) Cancel() bool {
	if s.st.Phase != PhaseScanning {
		return false
	}
	s.st = State{}
	return true
}

// Reset returns a completed session to Idle.
func (s *Session) Reset() bool {
	if s.st.Phase != PhaseComplete {
		return false
	}
	s.st = State{}
	return true
}
