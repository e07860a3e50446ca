package observerproto

// Version is the observer protocol version (separate from the input protocol).
const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeFrame     = "FRAME"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
// Observers are read-only; nothing they send reaches the simulation.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// MaxHz caps the frame rate for this observer. 0 = every published frame.
	MaxHz int `json:"max_hz,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string        `json:"protocol_version"`
	WorldID         string        `json:"world_id"`
	SessionID       string        `json:"session_id,omitempty"`
	Tick            uint64        `json:"tick"`
	RoomParams      RoomParams    `json:"room_params"`
	Exhibits        []ExhibitInfo `json:"exhibits"`
}

type RoomParams struct {
	TickRateHz         int        `json:"tick_rate_hz"`
	Seed               int64      `json:"seed"`
	BoundsMin          [3]float64 `json:"bounds_min"`
	BoundsMax          [3]float64 `json:"bounds_max"`
	ProximityThreshold float64    `json:"proximity_threshold"`
	ScanDurationSec    float64    `json:"scan_duration_sec"`
	ScanRate           float64    `json:"scan_rate"`
	InfoDisplaySec     float64    `json:"info_display_sec"`
}

type ExhibitInfo struct {
	ID          string     `json:"id"`
	Pos         [3]float64 `json:"pos"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Artist      string     `json:"artist"`
	Year        int        `json:"year"`
	YearLabel   string     `json:"year_label"`
	Scale       float64    `json:"scale,omitempty"`
	RotationDeg [3]float64 `json:"rotation_deg"`
	Model       string     `json:"model,omitempty"`
}

// Server -> Client. Sent for each published world snapshot.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Digest          string `json:"digest"`

	Avatar      AvatarState `json:"avatar"`
	CandidateID string      `json:"candidate_id,omitempty"`
	Scan        ScanState   `json:"scan"`
	Panel       PanelState  `json:"panel"`
	Quit        bool        `json:"quit,omitempty"`
}

type AvatarState struct {
	Pos     [3]float64  `json:"pos"`
	Front   [3]float64  `json:"front"`
	Heading float64     `json:"heading"`
	Mode    string      `json:"mode"`
	Target  *[3]float64 `json:"target,omitempty"`
}

type ScanState struct {
	Phase     string  `json:"phase"`
	ExhibitID string  `json:"exhibit_id,omitempty"`
	Progress  float64 `json:"progress"`
}

type PanelState struct {
	Showing     bool    `json:"showing"`
	ExhibitID   string  `json:"exhibit_id,omitempty"`
	Elapsed     float64 `json:"elapsed"`
	Remaining   float64 `json:"remaining"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Artist      string  `json:"artist,omitempty"`
	YearLabel   string  `json:"year_label,omitempty"`
}
