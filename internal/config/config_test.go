package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath     = "testdata/valid_config.yaml"
	expansionConfigPath = "testdata/expansion_config.yaml"
	invalidConfigPath   = "testdata/invalid_config.yaml"
	nonexistentPath     = "testdata/nonexistent_config.yaml"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "gamblebot-api" {
		t.Errorf("expected app name 'gamblebot-api', got '%s'", cfg.App.Name)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got '%s'", cfg.App.Environment)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}

	if cfg.Engine.KellyCap != 0.15 {
		t.Errorf("expected kelly cap 0.15, got %v", cfg.Engine.KellyCap)
	}

	if cfg.Engine.CorrelationDecay != 0.90 {
		t.Errorf("expected correlation decay 0.90, got %v", cfg.Engine.CorrelationDecay)
	}

	if len(cfg.OddsAPI.Markets) != 3 {
		t.Errorf("expected 3 markets, got %d", len(cfg.OddsAPI.Markets))
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestValidateValidConfig tests validation of a well-formed configuration
func TestValidateValidConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config to pass validation, got %v", err)
	}
}

// TestValidateInvalidConfig tests rejection of bad environment, level, markets
func TestValidateInvalidConfig(t *testing.T) {
	cfg, err := Load(invalidConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Environment") {
		t.Errorf("expected environment validation failure, got: %s", msg)
	}
	if !strings.Contains(msg, "Markets") {
		t.Errorf("expected markets validation failure, got: %s", msg)
	}
}

// TestValidateCrossFieldOverroundBand tests the band ordering rule
func TestValidateCrossFieldOverroundBand(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg.Engine.OverroundMin = 1.2
	cfg.Engine.OverroundMax = 1.1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected inverted overround band to fail validation")
	}
}

// TestValidateScanRequiresSchedule tests the scheduled-scan cross check
func TestValidateScanRequiresSchedule(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg.Scan.Enabled = true
	cfg.Scan.Schedule = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected enabled scan without schedule to fail validation")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests ${VAR} expansion
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected password from environment expansion, got '%s'", cfg.Database.Password)
	}
}

// TestLoadWithDefaults tests defaults when no file exists
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected default environment 'development', got '%s'", cfg.App.Environment)
	}
	if cfg.Engine.Bankroll != 1000 {
		t.Errorf("expected default bankroll 1000, got %v", cfg.Engine.Bankroll)
	}
	if cfg.Engine.DefaultTopN != 5 {
		t.Errorf("expected default top N 5, got %d", cfg.Engine.DefaultTopN)
	}
}

// TestGetDatabaseDSN tests DSN construction
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.Contains(dsn, "host=localhost") || !strings.Contains(dsn, "dbname=gamblebot") {
		t.Errorf("unexpected DSN: %s", dsn)
	}
}
