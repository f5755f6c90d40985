package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *MonitorConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Site.BaseURL == "" {
		return errors.New("site.base_url is required")
	}
	if c.Site.Username == "" {
		return errors.New("site.username is required")
	}
	if c.Site.Password == "" {
		return errors.New("site.password is required")
	}
	if c.Site.MaxRetries < 0 {
		return errors.New("site.max_retries must be >= 0")
	}
	if c.Site.RequestsPerSecond <= 0 {
		return errors.New("site.requests_per_second must be > 0")
	}

	switch c.Store.Backend {
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite backend")
		}
	case "postgres":
		if err := c.Store.Postgres.validate("store.postgres"); err != nil {
			return err
		}
	case "memory":
		// No settings; state is lost on restart.
	default:
		return fmt.Errorf("store.backend must be sqlite, postgres, or memory, got %q", c.Store.Backend)
	}

	if c.Cycle.Interval < time.Second {
		return errors.New("cycle.interval must be >= 1s")
	}
	if c.Cycle.AutoCommitQuantity < 1 {
		return errors.New("cycle.auto_commit_quantity must be >= 1")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
