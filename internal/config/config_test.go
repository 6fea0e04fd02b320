package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("TRIAGE_CONFIG", "")
	t.Setenv("WORKSPACE_ID", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")

	cfg := Load()
	if cfg.WorkspaceID != "default" {
		t.Fatalf("expected default workspace id, got %q", cfg.WorkspaceID)
	}
	if cfg.NATSSubject != "clustering.runs" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("expected default rate limit 50, got %f", cfg.APIRateLimitRPS)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("TRIAGE_CONFIG", "")
	t.Setenv("WORKSPACE_ID", "ws-acme")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_MAX_IN_FLIGHT", "32")

	cfg := Load()
	if cfg.WorkspaceID != "ws-acme" {
		t.Fatalf("expected workspace override, got %q", cfg.WorkspaceID)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %f", cfg.APIRateLimitRPS)
	}
	if cfg.APIMaxInFlight != 32 {
		t.Fatalf("expected max in flight 32, got %d", cfg.APIMaxInFlight)
	}
}

func TestLoadExplicitZeroDisablesTrafficControl(t *testing.T) {
	t.Setenv("TRIAGE_CONFIG", "")
	t.Setenv("API_RATE_LIMIT_RPS", "0")
	t.Setenv("API_MAX_IN_FLIGHT", "0")

	cfg := Load()
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("explicit 0 must not fall back to the default, got %f", cfg.APIRateLimitRPS)
	}
	if cfg.APIMaxInFlight != 0 {
		t.Fatalf("explicit 0 must not fall back to the default, got %d", cfg.APIMaxInFlight)
	}
}

func TestLoadExplicitZeroInFileDisablesTrafficControl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.yaml")
	contents := []byte("api_max_in_flight: 0\napi_rate_limit_rps: 0\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("TRIAGE_CONFIG", path)
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("API_MAX_IN_FLIGHT", "")

	cfg := Load()
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("file value 0 must win over the default, got %f", cfg.APIRateLimitRPS)
	}
	if cfg.APIMaxInFlight != 0 {
		t.Fatalf("file value 0 must win over the default, got %d", cfg.APIMaxInFlight)
	}
	if cfg.APIRateLimitBurst != 100 {
		t.Fatalf("absent key must keep the default burst, got %d", cfg.APIRateLimitBurst)
	}
}

func TestLoadReadsYAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.yaml")
	contents := []byte("workspace_id: ws-from-file\napi_port: \"9999\"\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("TRIAGE_CONFIG", path)
	t.Setenv("WORKSPACE_ID", "ws-from-env")
	t.Setenv("API_PORT", "")

	cfg := Load()
	if cfg.WorkspaceID != "ws-from-env" {
		t.Fatalf("env must win over file, got %q", cfg.WorkspaceID)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("expected file value for api_port, got %q", cfg.APIPort)
	}
}
