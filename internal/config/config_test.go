package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxBodyBytes != 33554432 {
		t.Errorf("Server.MaxBodyBytes = %d, want %d", cfg.Server.MaxBodyBytes, 33554432)
	}
	if cfg.Convert.AllowFileSources {
		t.Error("Convert.AllowFileSources should default to false")
	}
	if cfg.Convert.MaxRecordsCap != -1 {
		t.Errorf("Convert.MaxRecordsCap = %d, want -1", cfg.Convert.MaxRecordsCap)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("CSVXML_PORT", "9090")
	t.Setenv("CSVXML_READ_TIMEOUT", "5s")
	t.Setenv("CSVXML_ALLOW_FILE_SOURCES", "true")
	t.Setenv("CSVXML_FILE_ROOT", "/srv/data")
	t.Setenv("CSVXML_MAX_RECORDS_CAP", "1000")
	t.Setenv("CSVXML_LOG_LEVEL", "debug")
	t.Setenv("CSVXML_LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if !cfg.Convert.AllowFileSources {
		t.Error("Convert.AllowFileSources = false, want true")
	}
	if cfg.Convert.FileRoot != "/srv/data" {
		t.Errorf("Convert.FileRoot = %q, want %q", cfg.Convert.FileRoot, "/srv/data")
	}
	if cfg.Convert.MaxRecordsCap != 1000 {
		t.Errorf("Convert.MaxRecordsCap = %d, want %d", cfg.Convert.MaxRecordsCap, 1000)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"bad integer", "CSVXML_PORT", "eighty"},
		{"bad duration", "CSVXML_READ_TIMEOUT", "soon"},
		{"bad boolean", "CSVXML_ALLOW_FILE_SOURCES", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%q should fail", tt.env, tt.value)
			}
		})
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantMsg string
	}{
		{"port out of range", "CSVXML_PORT", "70000", "CSVXML_PORT"},
		{"file sources without root", "CSVXML_ALLOW_FILE_SOURCES", "true", "CSVXML_FILE_ROOT"},
		{"cap below -1", "CSVXML_MAX_RECORDS_CAP", "-5", "CSVXML_MAX_RECORDS_CAP"},
		{"unknown log level", "CSVXML_LOG_LEVEL", "trace", "CSVXML_LOG_LEVEL"},
		{"unknown log format", "CSVXML_LOG_FORMAT", "xml", "CSVXML_LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load() with %s=%q should fail validation", tt.env, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %s", err, tt.wantMsg)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	sc := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := sc.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:9000")
	}
}
