package app

import "errors"

// defaultMirrorLines bounds the on-screen log mirror.
const defaultMirrorLines = 100

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string // hcl manifest declaring the bootstrap run

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	MirrorLines     int
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.MirrorLines <= 0 {
		cfg.MirrorLines = defaultMirrorLines
	}
	return &cfg, nil
}
