package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnvStateDir overrides the state directory when set. It wins over the
// config file so containerized agents can share one directory without
// per-checkout config.
const EnvStateDir = "SWARMD_STATE_DIR"

// Defaults for the daemon and emitter intervals.
const (
	DefaultPollInterval      = 5 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultLivenessThreshold = 2 * time.Minute
	DefaultHookTimeout       = 100 * time.Millisecond
	DefaultDetectionCycles   = 12
)

// Config represents the flat swarmd configuration.
// Durations are JSON strings parseable by time.ParseDuration.
type Config struct {
	Version  string `json:"version"`
	StateDir string `json:"state_dir,omitempty"`

	PollInterval       Duration `json:"poll_interval,omitempty"`
	HeartbeatInterval  Duration `json:"heartbeat_interval,omitempty"`
	StaleCheckInterval Duration `json:"stale_check_interval,omitempty"` // zero disables the sweep
	LivenessThreshold  Duration `json:"liveness_threshold,omitempty"`
	HookTimeout        Duration `json:"hook_timeout,omitempty"`
	DetectionCycles    int      `json:"detection_cycles,omitempty"`
}

// Duration is a time.Duration that marshals as a string ("5s", "2m").
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns a config with all defaults filled in.
func Default() *Config {
	return &Config{
		Version:            "1",
		StateDir:           defaultStateDir(),
		PollInterval:       Duration(DefaultPollInterval),
		HeartbeatInterval:  Duration(DefaultHeartbeatInterval),
		StaleCheckInterval: Duration(DefaultPollInterval),
		LivenessThreshold:  Duration(DefaultLivenessThreshold),
		HookTimeout:        Duration(DefaultHookTimeout),
		DetectionCycles:    DefaultDetectionCycles,
	}
}

// LoadConfig reads .swarmd/config.json from the specified directory.
// A missing file is not an error: defaults apply, so agents work with
// zero setup. The SWARMD_STATE_DIR environment variable overrides the
// state directory either way.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ".swarmd", "config.json")
	data, err := os.ReadFile(path)
	if err == nil {
		var file Config
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.merge(&file)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if env := os.Getenv(EnvStateDir); env != "" {
		cfg.StateDir = env
	}

	return cfg, nil
}

// SaveConfig writes config.json to the .swarmd directory under dir.
func SaveConfig(dir string, cfg *Config) error {
	confDir := filepath.Join(dir, ".swarmd")
	if err := os.MkdirAll(confDir, 0755); err != nil {
		return fmt.Errorf("failed to create .swarmd dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(confDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// merge overlays non-zero fields from other onto c.
func (c *Config) merge(other *Config) {
	if other.Version != "" {
		c.Version = other.Version
	}
	if other.StateDir != "" {
		c.StateDir = other.StateDir
	}
	if other.PollInterval != 0 {
		c.PollInterval = other.PollInterval
	}
	if other.HeartbeatInterval != 0 {
		c.HeartbeatInterval = other.HeartbeatInterval
	}
	if other.StaleCheckInterval != 0 {
		c.StaleCheckInterval = other.StaleCheckInterval
	}
	if other.LivenessThreshold != 0 {
		c.LivenessThreshold = other.LivenessThreshold
	}
	if other.HookTimeout != 0 {
		c.HookTimeout = other.HookTimeout
	}
	if other.DetectionCycles != 0 {
		c.DetectionCycles = other.DetectionCycles
	}
}

func defaultStateDir() string {
	return filepath.Join(os.TempDir(), "swarm-coordination")
}
