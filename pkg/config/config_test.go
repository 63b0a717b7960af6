package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
environment: test
server:
  port: 9090
storage:
  source: local
  local_path: ./models
loader:
  bytes_cache:
    type: memory
    ttl: 30m
costs:
  enabled: true
  warning_usd: 2.00
  critical_usd: 2.50
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.Storage.Source != "local" {
		t.Fatalf("unexpected source %q", cfg.Storage.Source)
	}
	if cfg.Costs.WarningUSD != 2.00 {
		t.Fatalf("unexpected warning threshold %v", cfg.Costs.WarningUSD)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRejectsBadSource(t *testing.T) {
	raw := `
environment: test
storage:
  source: ftp
`
	if _, err := Load(writeConfig(t, raw)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRequiresLocalPath(t *testing.T) {
	raw := `
environment: test
storage:
  source: local
`
	if _, err := Load(writeConfig(t, raw)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRequiresBucketForS3(t *testing.T) {
	raw := `
environment: test
storage:
  source: s3
`
	if _, err := Load(writeConfig(t, raw)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	raw := `
environment: test
storage:
  source: local
  local_path: ./models
costs:
  enabled: true
  warning_usd: 5.00
  critical_usd: 2.50
`
	if _, err := Load(writeConfig(t, raw)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_SOURCE", "s3")
	t.Setenv("MODEL_BUCKET", "trading-models")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := LoadWithEnv(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Source != "s3" {
		t.Fatalf("unexpected source %q", cfg.Storage.Source)
	}
	if cfg.Storage.S3.Bucket != "trading-models" {
		t.Fatalf("unexpected bucket %q", cfg.Storage.S3.Bucket)
	}
	if cfg.Storage.S3.Region != "eu-west-1" || cfg.Costs.Region != "eu-west-1" {
		t.Fatalf("region override not applied")
	}
}
