package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-monitor
site:
  base_url: https://staging.buyinggroup.example
  username: deals@example.com
  password: hunter2
store:
  backend: sqlite
  path: /tmp/deals.db
cycle:
  interval: 2m
  auto_commit: true
  auto_commit_quantity: 2
notify:
  webhook_url: https://discord.com/api/webhooks/123/abc
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-monitor" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-monitor")
	}
	if cfg.Site.BaseURL != "https://staging.buyinggroup.example" {
		t.Errorf("Site.BaseURL = %q, want %q", cfg.Site.BaseURL, "https://staging.buyinggroup.example")
	}
	if cfg.Cycle.Interval != 2*time.Minute {
		t.Errorf("Cycle.Interval = %v, want %v", cfg.Cycle.Interval, 2*time.Minute)
	}
	if !cfg.Cycle.AutoCommit {
		t.Error("Cycle.AutoCommit = false, want true")
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "sqlite")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_SITE_PASSWORD", "secret123")
	t.Setenv("TEST_WEBHOOK", "https://discord.com/api/webhooks/999/zzz")

	yaml := `
instance:
  id: test-monitor
site:
  username: deals@example.com
  password: ${TEST_SITE_PASSWORD}
notify:
  webhook_url: ${TEST_WEBHOOK}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Site.Password != "secret123" {
		t.Errorf("Site.Password = %q, want %q", cfg.Site.Password, "secret123")
	}
	if cfg.Notify.WebhookURL != "https://discord.com/api/webhooks/999/zzz" {
		t.Errorf("Notify.WebhookURL = %q, want %q", cfg.Notify.WebhookURL, "https://discord.com/api/webhooks/999/zzz")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-monitor
site:
  username: deals@example.com
  password: hunter2
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Site.BaseURL != DefaultBaseURL {
		t.Errorf("Site.BaseURL = %q, want default %q", cfg.Site.BaseURL, DefaultBaseURL)
	}
	if cfg.Site.Timeout != DefaultSiteTimeout {
		t.Errorf("Site.Timeout = %v, want default %v", cfg.Site.Timeout, DefaultSiteTimeout)
	}
	if cfg.Store.Backend != DefaultStoreBackend {
		t.Errorf("Store.Backend = %q, want default %q", cfg.Store.Backend, DefaultStoreBackend)
	}
	if cfg.Store.Postgres.Port != DefaultDBPort {
		t.Errorf("Store.Postgres.Port = %d, want default %d", cfg.Store.Postgres.Port, DefaultDBPort)
	}
	if cfg.Cycle.Interval != DefaultCycleInterval {
		t.Errorf("Cycle.Interval = %v, want default %v", cfg.Cycle.Interval, DefaultCycleInterval)
	}
	if cfg.Cycle.AutoCommit {
		t.Error("Cycle.AutoCommit = true, want false unless configured")
	}
	if cfg.Cycle.AutoCommitQuantity != DefaultAutoCommitQuantity {
		t.Errorf("Cycle.AutoCommitQuantity = %d, want default %d", cfg.Cycle.AutoCommitQuantity, DefaultAutoCommitQuantity)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want default %d", cfg.Health.Port, DefaultHealthPort)
	}
}

func TestValidate(t *testing.T) {
	valid := func() MonitorConfig {
		return MonitorConfig{
			Instance: InstanceConfig{ID: "test"},
			Site: SiteConfig{
				BaseURL:           "https://app.buyinggroup.ca",
				Username:          "deals@example.com",
				Password:          "hunter2",
				RequestsPerSecond: 1,
			},
			Store: StoreConfig{Backend: "sqlite", Path: "deals.db"},
			Cycle: CycleConfig{
				Interval:           5 * time.Minute,
				AutoCommitQuantity: 1,
			},
			Health: HealthConfig{Port: 8000},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*MonitorConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *MonitorConfig) {},
			wantErr: "",
		},
		{
			name:    "missing instance id",
			mutate:  func(c *MonitorConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "missing username",
			mutate:  func(c *MonitorConfig) { c.Site.Username = "" },
			wantErr: "site.username is required",
		},
		{
			name:    "missing password",
			mutate:  func(c *MonitorConfig) { c.Site.Password = "" },
			wantErr: "site.password is required",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *MonitorConfig) { c.Store.Backend = "redis" },
			wantErr: `store.backend must be sqlite, postgres, or memory, got "redis"`,
		},
		{
			name: "postgres backend requires host",
			mutate: func(c *MonitorConfig) {
				c.Store.Backend = "postgres"
				c.Store.Postgres = DBConfig{Name: "deals", User: "u", Password: "p", MaxConns: 5}
			},
			wantErr: "store.postgres.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *MonitorConfig) {
				c.Store.Backend = "postgres"
				c.Store.Postgres = DBConfig{Host: "localhost", Name: "deals", User: "u", Password: "p", MaxConns: 5, MinConns: 10}
			},
			wantErr: "store.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "interval too small",
			mutate:  func(c *MonitorConfig) { c.Cycle.Interval = 500 * time.Millisecond },
			wantErr: "cycle.interval must be >= 1s",
		},
		{
			name:    "zero auto commit quantity",
			mutate:  func(c *MonitorConfig) { c.Cycle.AutoCommitQuantity = 0 },
			wantErr: "cycle.auto_commit_quantity must be >= 1",
		},
		{
			name:    "bad health port",
			mutate:  func(c *MonitorConfig) { c.Health.Port = 70000 },
			wantErr: "health.port must be between 1 and 65535, got 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
