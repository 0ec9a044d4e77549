package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "gymbuddy"
  user: "gymbuddy"
  password: "secret"
  sslmode: "disable"
tailscale:
  enabled: false
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "gymbuddy" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "gymbuddy")
	}
	if cfg.Tailscale.Enabled {
		t.Error("tailscale.enabled = true, want false")
	}
}

// TestEnvOverride verifies that GYMBUDDY_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("GYMBUDDY_DB_HOST", "db.internal")
	t.Setenv("GYMBUDDY_SERVER_PORT", "9999")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "db.internal")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
}

// TestValidationFailures verifies that incomplete configs are rejected.
func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing database host",
			yaml: "server:\n  port: 8080\ndatabase:\n  port: 5432\n  name: g\n  user: g\n",
		},
		{
			name: "missing server port without tailscale",
			yaml: "database:\n  host: localhost\n  port: 5432\n  name: g\n  user: g\n",
		},
		{
			name: "tailscale enabled without hostname",
			yaml: "database:\n  host: localhost\n  port: 5432\n  name: g\n  user: g\ntailscale:\n  enabled: true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tt.yaml)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

// TestDSN verifies the PostgreSQL connection string format and the
// sslmode default.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, Name: "gym", User: "u", Password: "p"}
	want := "postgres://u:p@localhost:5432/gym?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.SSLMode = "require"
	want = "postgres://u:p@localhost:5432/gym?sslmode=require"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
