// Package config provides centralized configuration for the conversion
// service. It loads settings from environment variables with sensible
// defaults and validates the result on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"time"
)

// Config holds all service configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Convert ConvertConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"CSVXML_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"CSVXML_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 30s)
	ReadTimeout time.Duration `env:"CSVXML_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"CSVXML_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 120s)
	IdleTimeout time.Duration `env:"CSVXML_IDLE_TIMEOUT" default:"120s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"CSVXML_SHUTDOWN_TIMEOUT" default:"10s"`

	// MaxBodyBytes is the maximum accepted size of an uploaded document
	// in bytes (default: 32MB)
	MaxBodyBytes int64 `env:"CSVXML_MAX_BODY_BYTES" default:"33554432"`
}

// ConvertConfig holds conversion settings.
type ConvertConfig struct {
	// AllowFileSources permits converting file:// URIs named by the
	// src query parameter (default: false)
	AllowFileSources bool `env:"CSVXML_ALLOW_FILE_SOURCES" default:"false"`

	// FileRoot confines file sources to a directory tree. Required
	// when AllowFileSources is set.
	FileRoot string `env:"CSVXML_FILE_ROOT"`

	// MaxRecordsCap bounds the max-records option a client may ask
	// for; -1 leaves it unbounded (default: -1)
	MaxRecordsCap int `env:"CSVXML_MAX_RECORDS_CAP" default:"-1"`

	// RequestTimeout is the deadline for a single conversion request
	// (default: 60s)
	RequestTimeout time.Duration `env:"CSVXML_REQUEST_TIMEOUT" default:"60s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum level to log: debug, info, warn or error
	// (default: info)
	Level string `env:"CSVXML_LOG_LEVEL" default:"info"`

	// Format selects the log encoding: text, json or console
	// (default: text)
	Format string `env:"CSVXML_LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
