package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	ManifestVersion = 1
	ManifestName    = "session.json"
)

// ManifestV1 pins everything a replay needs besides the frame log itself.
type ManifestV1 struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	WorldID   string `json:"world_id"`

	Seed       int64 `json:"seed"`
	TickRateHz int   `json:"tick_rate_hz"`

	TuningPath     string `json:"tuning_path,omitempty"`
	TuningDigest   string `json:"tuning_digest,omitempty"`
	ConfigDir      string `json:"config_dir"`
	ExhibitsDigest string `json:"exhibits_digest"`

	StartedAt time.Time `json:"started_at"`
}

// Write stores m as dir/session.json via a temp file and rename.
func Write(dir string, m ManifestV1) error {
	if m.Version == 0 {
		m.Version = ManifestVersion
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, ManifestName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Read(dir string) (ManifestV1, error) {
	var m ManifestV1
	b, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("%s: %w", ManifestName, err)
	}
	if m.Version != ManifestVersion {
		return m, fmt.Errorf("%s: unsupported version %d", ManifestName, m.Version)
	}
	return m, nil
}
