package protocol

const (
	// Guard failures inside the interaction core. Logged, never propagated.
	ErrInvalidOperation = "E_INVALID_OPERATION"
	ErrNoCandidate      = "E_NO_CANDIDATE"
	ErrConflict         = "E_CONFLICT"
	ErrPanelShowing     = "E_PANEL_SHOWING"
	ErrNoWaypoints      = "E_NO_WAYPOINTS"

	// Outer surfaces.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrInvalidOperation: {},
	ErrNoCandidate:      {},
	ErrConflict:         {},
	ErrPanelShowing:     {},
	ErrNoWaypoints:      {},
	ErrBadRequest:       {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
