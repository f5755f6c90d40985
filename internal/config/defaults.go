package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL            = "https://app.buyinggroup.ca"
	DefaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"
	DefaultSiteTimeout        = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBackoff       = 5 * time.Second
	DefaultRequestsPerSecond  = 1.0
	DefaultStoreBackend       = "sqlite"
	DefaultSQLitePath         = "buying_group_deals.db"
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultCycleInterval      = 5 * time.Minute
	DefaultAutoCommitQuantity = 1
	DefaultNotifyTimeout      = 10 * time.Second
	DefaultHealthPort         = 8000
	DefaultMetricsPath        = "/metrics"
)

func (c *MonitorConfig) applyDefaults() {
	// Site defaults
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = DefaultBaseURL
	}
	if c.Site.UserAgent == "" {
		c.Site.UserAgent = DefaultUserAgent
	}
	if c.Site.Timeout == 0 {
		c.Site.Timeout = DefaultSiteTimeout
	}
	if c.Site.MaxRetries == 0 {
		c.Site.MaxRetries = DefaultMaxRetries
	}
	if c.Site.RetryBackoff == 0 {
		c.Site.RetryBackoff = DefaultRetryBackoff
	}
	if c.Site.RequestsPerSecond == 0 {
		c.Site.RequestsPerSecond = DefaultRequestsPerSecond
	}

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultStoreBackend
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultSQLitePath
	}
	applyDBDefaults(&c.Store.Postgres)

	// Cycle defaults
	if c.Cycle.Interval == 0 {
		c.Cycle.Interval = DefaultCycleInterval
	}
	if c.Cycle.AutoCommitQuantity == 0 {
		c.Cycle.AutoCommitQuantity = DefaultAutoCommitQuantity
	}

	// Notify defaults
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = DefaultNotifyTimeout
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.MetricsPath == "" {
		c.Health.MetricsPath = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
