package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8087" {
		t.Errorf("Expected Port to be 8087, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Pipeline.Workers != 8 {
		t.Errorf("Expected Pipeline Workers to be 8, got %d", cfg.Pipeline.Workers)
	}

	if cfg.Database.MaxConns != 10 {
		t.Errorf("Expected DB MaxConns to be 10, got %d", cfg.Database.MaxConns)
	}

	if cfg.Provider.Source != "csv" {
		t.Errorf("Expected Provider Source to be csv, got %s", cfg.Provider.Source)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("DB_MAX_CONNS", "50")
	os.Setenv("PIPELINE_WORKERS", "4")
	os.Setenv("CAPITAL_FLOW_THRESHOLD", "0.1")
	os.Setenv("LOG_LEVEL", "info")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("DB_MAX_CONNS")
		os.Unsetenv("PIPELINE_WORKERS")
		os.Unsetenv("CAPITAL_FLOW_THRESHOLD")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Database.MaxConns != 50 {
		t.Errorf("Expected DB MaxConns to be 50, got %d", cfg.Database.MaxConns)
	}

	if cfg.Pipeline.Workers != 4 {
		t.Errorf("Expected Pipeline Workers to be 4, got %d", cfg.Pipeline.Workers)
	}

	if cfg.Pipeline.CapitalFlowThresh != 0.1 {
		t.Errorf("Expected CapitalFlowThresh to be 0.1, got %f", cfg.Pipeline.CapitalFlowThresh)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestValidateMissingDatabaseURL(t *testing.T) {
	os.Setenv("DB_ENABLED", "true")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("DB_ENABLED")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DB_ENABLED is set without DATABASE_URL, got nil")
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateProviderSource(t *testing.T) {
	os.Setenv("PROVIDER_SOURCE", "ftp")
	defer os.Unsetenv("PROVIDER_SOURCE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when PROVIDER_SOURCE is unknown, got nil")
	}
}

func TestValidateProviderBaseURL(t *testing.T) {
	os.Setenv("PROVIDER_SOURCE", "rest")
	os.Unsetenv("PROVIDER_BASE_URL")
	defer os.Unsetenv("PROVIDER_SOURCE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when rest source has no base URL, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "0.25")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 0.5)
	if value != 0.25 {
		t.Errorf("Expected value to be 0.25, got %f", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
