package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	Bounds   Bounds     `yaml:"bounds"`
	StartPos [3]float64 `yaml:"start_pos"`

	MoveSpeed      float64 `yaml:"move_speed"`       // units/s, manual
	RotateSpeedDeg float64 `yaml:"rotate_speed_deg"` // deg/s
	TravelSpeed    float64 `yaml:"travel_speed"`     // units/s, patrol and directed travel
	ArrivalEpsilon float64 `yaml:"arrival_epsilon"`

	ProximityThreshold float64 `yaml:"proximity_threshold"`
	ScanDurationSec    float64 `yaml:"scan_duration_sec"`
	ScanRate           float64 `yaml:"scan_rate"`
	InfoDisplaySec     float64 `yaml:"info_display_sec"`

	PatrolWaypoints [][3]float64 `yaml:"patrol_waypoints"`

	// Digest is the sha256 of the file the tuning was loaded from (empty for defaults).
	Digest string `yaml:"-"`
}

type Bounds struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      60,
		Bounds: Bounds{
			Min: [3]float64{-2.8, -1.75, -5.8},
			Max: [3]float64{2.8, 1.75, 5.8},
		},
		StartPos:           [3]float64{0, -1.8, -2.0},
		MoveSpeed:          3.0,
		RotateSpeedDeg:     270,
		TravelSpeed:        5.0,
		ArrivalEpsilon:     0.1,
		ProximityThreshold: 1.5,
		ScanDurationSec:    1.0,
		ScanRate:           1.5,
		InfoDisplaySec:     5.0,
		PatrolWaypoints: [][3]float64{
			{-1.2, -1.75, -1.2},
			{1.2, -1.75, -1.2},
			{1.2, -1.75, 1.2},
			{-1.2, -1.75, 1.2},
		},
	}
}

// Load reads a tuning file. Fields the file omits keep their Defaults() value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	sum := sha256.Sum256(raw)
	t.Digest = hex.EncodeToString(sum[:])
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0 (got %d)", t.TickRateHz)
	}
	for i, axis := range []string{"x", "y", "z"} {
		if t.Bounds.Min[i] > t.Bounds.Max[i] {
			return fmt.Errorf("bounds.%s: min %.3f > max %.3f", axis, t.Bounds.Min[i], t.Bounds.Max[i])
		}
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"move_speed", t.MoveSpeed},
		{"rotate_speed_deg", t.RotateSpeedDeg},
		{"travel_speed", t.TravelSpeed},
		{"arrival_epsilon", t.ArrivalEpsilon},
		{"proximity_threshold", t.ProximityThreshold},
		{"scan_duration_sec", t.ScanDurationSec},
		{"scan_rate", t.ScanRate},
		{"info_display_sec", t.InfoDisplaySec},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%s must be a positive number (got %v)", p.name, p.v)
		}
	}
	return nil
}
