package config

import (
	"testing"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	return cfg
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := defaultConfig(t)

	if cfg.Storage.Driver != "file" {
		t.Fatalf("expected file driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.Prefix != "site_test_rest" {
		t.Fatalf("unexpected prefix: %s", cfg.Storage.Prefix)
	}
	if cfg.Storage.ScratchDir == "" {
		t.Fatal("expected default scratch dir")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Admin.Port != 38990 {
		t.Fatalf("unexpected admin port: %d", cfg.Admin.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate_DriverNormalization(t *testing.T) {
	cfg := defaultConfig(t)

	cfg.Storage.Driver = "sqlite3"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sqlite3 should validate: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Fatalf("expected normalized driver, got %s", cfg.Storage.Driver)
	}

	cfg.Storage.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unsupported driver to fail validation")
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Log.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid log level to fail validation")
	}
}

func TestValidate_AdminPath(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Admin.Enable = true
	cfg.Admin.Path = "api"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected admin path without leading slash to fail validation")
	}
}

func TestValidate_OutputMode(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Output.Mode = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid output mode to fail validation")
	}
}
