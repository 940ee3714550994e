package logging

import (
	"context"

	"github.com/goliatone/go-notedown/pkg/interfaces"
)

const (
	rootModule      = "notedown"
	jobsModule      = "notedown.jobs"
	markdownModule  = "notedown.markdown"
	schedulerModule = "notedown.scheduler"
	artifactsModule = "notedown.artifacts"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// JobsLogger returns the logger namespace reserved for the conversion worker.
func JobsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, jobsModule)
}

// MarkdownLogger returns the logger namespace reserved for the renderer.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// SchedulerLogger returns the logger namespace reserved for job scheduling.
func SchedulerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schedulerModule)
}

// ArtifactsLogger returns the logger namespace reserved for artifact storage.
func ArtifactsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, artifactsModule)
}

// WithConversionContext enriches the provided logger with the fields shared
// by every conversion log entry. Zero values are ignored.
func WithConversionContext(logger interfaces.Logger, documentID string, version int64) interfaces.Logger {
	fields := map[string]any{}
	if documentID != "" {
		fields["document_id"] = documentID
	}
	if version >= 0 {
		fields["version"] = version
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
