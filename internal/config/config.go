package config

import "time"

// MonitorConfig is the root configuration for a monitor instance.
type MonitorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Site     SiteConfig     `yaml:"site"`
	Store    StoreConfig    `yaml:"store"`
	Cycle    CycleConfig    `yaml:"cycle"`
	Notify   NotifyConfig   `yaml:"notify"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this monitor.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// SiteConfig holds buying-group site settings and credentials.
type SiteConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Username          string        `yaml:"username"` // Account login (email address)
	Password          string        `yaml:"password"`
	UserAgent         string        `yaml:"user_agent"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// StoreConfig selects and configures the deal store backend.
type StoreConfig struct {
	Backend  string   `yaml:"backend"` // "sqlite", "postgres", or "memory"
	Path     string   `yaml:"path"`    // SQLite database file
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CycleConfig holds reconciliation loop settings.
type CycleConfig struct {
	Interval           time.Duration `yaml:"interval"`
	AutoCommit         bool          `yaml:"auto_commit"` // Off unless explicitly enabled
	AutoCommitQuantity int           `yaml:"auto_commit_quantity"`
}

// NotifyConfig holds Discord webhook settings. An empty webhook URL
// disables delivery.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Username   string        `yaml:"username"` // Webhook display name override
	Timeout    time.Duration `yaml:"timeout"`
}

// HealthConfig holds the health/status HTTP server settings.
type HealthConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}
