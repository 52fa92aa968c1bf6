// Package config defines service configuration structures and loading hooks.
//
// Values are layered: defaults from New, then an optional YAML file, then
// BONUS_* environment variables.
package config

import (
	"time"

	"github.com/okian/bonusboard/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BackendURL is the base URL of the bonus tracker backend.
	BackendURL string `koanf:"backend_url"`

	// RequestTimeoutMS bounds each backend request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// Silent refresh schedules, as cron specs or descriptors like "@every 2m".
	QueueSchedule     string `koanf:"queue_schedule"`
	GoldRushSchedule  string `koanf:"goldrush_schedule"`
	DashboardSchedule string `koanf:"dashboard_schedule"`

	// PopupMS is how long each toast stays visible; AlertMS is the same for
	// the Returned alert.
	PopupMS int `koanf:"popup_ms"`
	AlertMS int `koanf:"alert_ms"`

	// NotifyQueueSize bounds pending toasts.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// SeenSetMax caps each persisted seen set.
	SeenSetMax int `koanf:"seen_set_max"`

	// PreviousOutcomeCeiling is the size at which the previous-outcome map
	// is rebuilt from the latest snapshot.
	PreviousOutcomeCeiling int `koanf:"previous_outcome_ceiling"`

	// ReturnedAlerts enables the Returned alert.
	ReturnedAlerts bool `koanf:"returned_alerts"`

	// Store settings for the seen sets and the admin key.
	StoreDriver   string `koanf:"store_driver"`
	SQLitePath    string `koanf:"sqlite_path"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	// Slack sink; disabled when the token is empty.
	SlackToken   string `koanf:"slack_token"`
	SlackChannel string `koanf:"slack_channel"`

	// Teams are the values offered by team filters.
	Teams []string `koanf:"teams"`

	// DefaultImage is used for qualifiers without an entry in QualifierImages.
	DefaultImage    string            `koanf:"default_image"`
	QualifierImages map[string]string `koanf:"qualifier_images"`

	// TierRoster maps qualifier names to GOLD, SILVER, BRONZE or ROOKIE.
	TierRoster map[string]string `koanf:"tier_roster"`
	TierLimits map[string]int    `koanf:"tier_limits"`

	// ManualFixes are added to the weekly summary on every Gold Rush refresh.
	ManualFixes []scoring.ManualFix `koanf:"manual_fixes"`

	TopGunsLimit  int `koanf:"topguns_limit"`
	DashboardRows int `koanf:"dashboard_rows"`
}

// New creates a Config with defaults.
func New() *Config {
	limits := make(map[string]int, len(scoring.DefaultLimits))
	for t, n := range scoring.DefaultLimits {
		limits[string(t)] = n
	}
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		BackendURL:             "https://bonus-tracker-backend-1wjh.onrender.com",
		RequestTimeoutMS:       60_000,
		QueueSchedule:          "@every 2m",
		GoldRushSchedule:       "@every 3m",
		DashboardSchedule:      "@every 10m",
		PopupMS:                40_000,
		AlertMS:                20_000,
		NotifyQueueSize:        1024,
		SeenSetMax:             800,
		PreviousOutcomeCeiling: 5000,
		ReturnedAlerts:         true,
		StoreDriver:            "memory",
		SQLitePath:             "bonusboard.db",
		RedisPrefix:            "bonusboard:",
		Teams:                  []string{"Legends", "Maserati", "Falcons", "Sharks"},
		DefaultImage:           "/static/agents/shadow.png",
		QualifierImages:        map[string]string{},
		TierRoster:             map[string]string{},
		TierLimits:             limits,
		TopGunsLimit:           15,
		DashboardRows:          25,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// PopupDuration returns PopupMS as a duration.
func (c *Config) PopupDuration() time.Duration {
	return time.Duration(c.PopupMS) * time.Millisecond
}

// AlertDuration returns AlertMS as a duration.
func (c *Config) AlertDuration() time.Duration {
	return time.Duration(c.AlertMS) * time.Millisecond
}

// TierLimit returns the card limit for tier, falling back to the default.
func (c *Config) TierLimit(t scoring.Tier) int {
	if n, ok := c.TierLimits[string(t)]; ok && n > 0 {
		return n
	}
	return scoring.DefaultLimits[t]
}
