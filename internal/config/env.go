package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the process environment surface. Command-line flags default to these values.
type Env struct {
	Addr       string `env:"MUSEUM_ADDR" envDefault:"127.0.0.1:8080"`
	DataDir    string `env:"MUSEUM_DATA_DIR" envDefault:"./data"`
	ConfigDir  string `env:"MUSEUM_CONFIG_DIR" envDefault:"./configs"`
	TuningPath string `env:"MUSEUM_TUNING"`
	Headless   bool   `env:"MUSEUM_HEADLESS" envDefault:"false"`
	Seed       int64  `env:"MUSEUM_SEED" envDefault:"1337"`
	DisableDB  bool   `env:"MUSEUM_DISABLE_DB" envDefault:"false"`
	// Ticks bounds a headless run; 0 runs until interrupted.
	Ticks       uint64 `env:"MUSEUM_TICKS" envDefault:"0"`
	AllowRemote bool   `env:"MUSEUM_OBSERVER_ALLOW_REMOTE" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	err := ParseEnv(&e)
	return e, err
}
