package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrSchedulingFeatureRequired = errors.New("notedown config: conversion requires scheduling to be enabled")
var ErrWorkerBatchSizeInvalid = errors.New("notedown config: worker batch size must be positive")
var ErrWorkerMaxAttemptsInvalid = errors.New("notedown config: worker max attempts must be positive")
var ErrWorkerRetryBackoffInvalid = errors.New("notedown config: worker retry backoff must be zero or positive")
var ErrArtifactProviderUnknown = errors.New("notedown config: artifact provider is invalid")
var ErrArtifactDSNRequired = errors.New("notedown config: artifact DSN is required for the sqlite provider")
var ErrLoggingProviderRequired = errors.New("notedown config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("notedown config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("notedown config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("notedown config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the conversion module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled   bool
	Worker    WorkerConfig
	Artifacts ArtifactsConfig
	Markdown  MarkdownConfig
	Features  Features
	Logging   LoggingConfig
}

// WorkerConfig captures batch and retry behaviour for the conversion worker.
type WorkerConfig struct {
	BatchSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// ArtifactsConfig selects the artifact persistence backend.
type ArtifactsConfig struct {
	Provider string
	DSN      string
}

// MarkdownConfig captures renderer behaviour for HTML previews.
type MarkdownConfig struct {
	Preview MarkdownPreviewConfig
}

// MarkdownPreviewConfig mirrors markdown.PreviewOptions for runtime configuration.
type MarkdownPreviewConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// Features toggles module functionality.
type Features struct {
	Conversion bool
	Scheduling bool
	Audit      bool
	Logger     bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for an embedded deployment.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Worker: WorkerConfig{
			BatchSize:    50,
			MaxAttempts:  3,
			RetryBackoff: time.Minute,
			Timeout:      30 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Provider: "memory",
		},
		Markdown: MarkdownConfig{
			Preview: MarkdownPreviewConfig{
				SafeMode: true,
			},
		},
		Features: Features{
			Conversion: true,
			Scheduling: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Features.Conversion && !cfg.Features.Scheduling {
		return ErrSchedulingFeatureRequired
	}
	if cfg.Worker.BatchSize <= 0 {
		return ErrWorkerBatchSizeInvalid
	}
	if cfg.Worker.MaxAttempts <= 0 {
		return ErrWorkerMaxAttemptsInvalid
	}
	if cfg.Worker.RetryBackoff < 0 {
		return ErrWorkerRetryBackoffInvalid
	}
	switch normalizeProvider(cfg.Artifacts.Provider) {
	case "", "memory":
	case "sqlite":
		if strings.TrimSpace(cfg.Artifacts.DSN) == "" {
			return ErrArtifactDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrArtifactProviderUnknown, cfg.Artifacts.Provider)
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedLoggingProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedLoggingProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
