package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds the client-side thresholds and timings. Front ends fetch it from
// /api/client-config; the Go client libraries take it directly.
type Tuning struct {
	RevealWindow       time.Duration `yaml:"reveal_window"`
	BlurCooldown       time.Duration `yaml:"blur_cooldown"`
	FastMouseThreshold float64       `yaml:"fast_mouse_threshold"` // px per ms
	HeartbeatInterval  time.Duration `yaml:"heartbeat_interval"`
	DashboardRefresh   time.Duration `yaml:"dashboard_refresh"`
	NoticeDuration     time.Duration `yaml:"notice_duration"`

	DecoyMinInterval time.Duration `yaml:"decoy_min_interval"`
	DecoyMaxInterval time.Duration `yaml:"decoy_max_interval"`
	DecoyMinDuration time.Duration `yaml:"decoy_min_duration"`
	DecoyMaxDuration time.Duration `yaml:"decoy_max_duration"`
}

// DefaultTuning returns the stock timings
func DefaultTuning() Tuning {
	return Tuning{
		RevealWindow:       700 * time.Millisecond,
		BlurCooldown:       2 * time.Second,
		FastMouseThreshold: 1.5,
		HeartbeatInterval:  60 * time.Second,
		DashboardRefresh:   30 * time.Second,
		NoticeDuration:     5 * time.Second,
		DecoyMinInterval:   800 * time.Millisecond,
		DecoyMaxInterval:   2000 * time.Millisecond,
		DecoyMinDuration:   700 * time.Millisecond,
		DecoyMaxDuration:   1600 * time.Millisecond,
	}
}

// Validate checks every timing is positive and decoy ranges are ordered
func (t Tuning) Validate() error {
	durations := map[string]time.Duration{
		"reveal_window":      t.RevealWindow,
		"blur_cooldown":      t.BlurCooldown,
		"heartbeat_interval": t.HeartbeatInterval,
		"dashboard_refresh":  t.DashboardRefresh,
		"notice_duration":    t.NoticeDuration,
		"decoy_min_interval": t.DecoyMinInterval,
		"decoy_min_duration": t.DecoyMinDuration,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("tuning %s must be positive", name)
		}
	}
	if t.FastMouseThreshold <= 0 {
		return fmt.Errorf("tuning fast_mouse_threshold must be positive")
	}
	if t.DecoyMaxInterval < t.DecoyMinInterval {
		return fmt.Errorf("tuning decoy_max_interval must be >= decoy_min_interval")
	}
	if t.DecoyMaxDuration < t.DecoyMinDuration {
		return fmt.Errorf("tuning decoy_max_duration must be >= decoy_min_duration")
	}
	return nil
}

// TuningFromEnv returns the default tuning with PEEKGUARD_* overrides applied
func TuningFromEnv() Tuning {
	return loadTuningFromEnv(DefaultTuning())
}

func loadTuningFromEnv(base Tuning) Tuning {
	base.RevealWindow = getEnvDuration("PEEKGUARD_REVEAL_WINDOW", base.RevealWindow)
	base.BlurCooldown = getEnvDuration("PEEKGUARD_BLUR_COOLDOWN", base.BlurCooldown)
	base.FastMouseThreshold = getEnvFloat("PEEKGUARD_FAST_MOUSE_THRESHOLD", base.FastMouseThreshold)
	base.HeartbeatInterval = getEnvDuration("PEEKGUARD_HEARTBEAT_INTERVAL", base.HeartbeatInterval)
	base.DashboardRefresh = getEnvDuration("PEEKGUARD_DASHBOARD_REFRESH", base.DashboardRefresh)
	base.NoticeDuration = getEnvDuration("PEEKGUARD_NOTICE_DURATION", base.NoticeDuration)
	return base
}

// LoadTuningFile reads a YAML tuning file over base. Keys absent from the file
// keep their base values.
func LoadTuningFile(path string, base Tuning) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read tuning file: %w", err)
	}
	return ParseTuning(data, base)
}

// ParseTuning decodes YAML tuning over base and validates the result
func ParseTuning(data []byte, base Tuning) (Tuning, error) {
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("failed to parse tuning: %w", err)
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

// ClientTuning is the JSON form of Tuning served at /api/client-config.
// Durations are whole milliseconds.
type ClientTuning struct {
	RevealWindowMS      int64   `json:"revealWindowMs"`
	BlurCooldownMS      int64   `json:"blurCooldownMs"`
	FastMouseThreshold  float64 `json:"fastMouseThreshold"`
	HeartbeatIntervalMS int64   `json:"heartbeatIntervalMs"`
	DashboardRefreshMS  int64   `json:"dashboardRefreshMs"`
	NoticeDurationMS    int64   `json:"noticeDurationMs"`
	DecoyMinIntervalMS  int64   `json:"decoyMinIntervalMs"`
	DecoyMaxIntervalMS  int64   `json:"decoyMaxIntervalMs"`
	DecoyMinDurationMS  int64   `json:"decoyMinDurationMs"`
	DecoyMaxDurationMS  int64   `json:"decoyMaxDurationMs"`
}

// Client converts t to its wire form
func (t Tuning) Client() ClientTuning {
	return ClientTuning{
		RevealWindowMS:      t.RevealWindow.Milliseconds(),
		BlurCooldownMS:      t.BlurCooldown.Milliseconds(),
		FastMouseThreshold:  t.FastMouseThreshold,
		HeartbeatIntervalMS: t.HeartbeatInterval.Milliseconds(),
		DashboardRefreshMS:  t.DashboardRefresh.Milliseconds(),
		NoticeDurationMS:    t.NoticeDuration.Milliseconds(),
		DecoyMinIntervalMS:  t.DecoyMinInterval.Milliseconds(),
		DecoyMaxIntervalMS:  t.DecoyMaxInterval.Milliseconds(),
		DecoyMinDurationMS:  t.DecoyMinDuration.Milliseconds(),
		DecoyMaxDurationMS:  t.DecoyMaxDuration.Milliseconds(),
	}
}

// Tuning converts the wire form back, keeping base for fields that are zero
func (c ClientTuning) Tuning(base Tuning) Tuning {
	ms := func(v int64, def time.Duration) time.Duration {
		if v <= 0 {
			return def
		}
		return time.Duration(v) * time.Millisecond
	}
	out := base
	out.RevealWindow = ms(c.RevealWindowMS, base.RevealWindow)
	out.BlurCooldown = ms(c.BlurCooldownMS, base.BlurCooldown)
	if c.FastMouseThreshold > 0 {
		out.FastMouseThreshold = c.FastMouseThreshold
	}
	out.HeartbeatInterval = ms(c.HeartbeatIntervalMS, base.HeartbeatInterval)
	out.DashboardRefresh = ms(c.DashboardRefreshMS, base.DashboardRefresh)
	out.NoticeDuration = ms(c.NoticeDurationMS, base.NoticeDuration)
	out.DecoyMinInterval = ms(c.DecoyMinIntervalMS, base.DecoyMinInterval)
	out.DecoyMaxInterval = ms(c.DecoyMaxIntervalMS, base.DecoyMaxInterval)
	out.DecoyMinDuration = ms(c.DecoyMinDurationMS, base.DecoyMinDuration)
	out.DecoyMaxDuration = ms(c.DecoyMaxDurationMS, base.DecoyMaxDuration)
	return out
}
