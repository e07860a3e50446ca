package infopanel

// DefaultDisplayDuration is how long a revealed panel stays up, in seconds.
const DefaultDisplayDuration = 5.0

// elapsedEpsilon absorbs rounding in the summed frame deltas, so sixty ticks of 1/60
// count as one full second.
const elapsedEpsilon = 1e-9

// State is Hidden (Showing=false) or Showing{ExhibitID, Elapsed}.
type State struct {
	Showing   bool
	ExhibitID string
	Elapsed   float64
}

type Panel struct {
	duration float64
	st       State
}

func New(duration float64) *Panel {
	if duration <= 0 {
		duration = DefaultDisplayDuration
	}
	return &Panel{duration: duration}
}

func (p *Panel) State() State      { return p.st }
func (p *Panel) Hidden() bool      { return !p.st.Showing }
func (p *Panel) Duration() float64 { return p.duration }

// Show starts a fresh display of exhibitID with Elapsed at 0.
func (p *Panel) Show(exhibitID string) {
	p.st = State{Showing: true, ExhibitID: exhibitID}
}

// Tick accumulates dt and reports true on the tick that auto-hides the panel.
func (p *Panel) Tick(dt float64) bool {
	if !p.st.Showing {
		return false
	}
	if dt > 0 {
		p.st.Elapsed += dt
	}
	if p.st.Elapsed < p.duration-elapsedEpsilon {
		return false
	}
	p.st = State{}
	return true
}

// Hide is idempotent; it reports whether the panel was showing.
func (p *Panel) Hide() bool {
	was := p.st.Showing
	p.st = State{}
	return was
}
