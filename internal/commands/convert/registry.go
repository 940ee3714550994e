package convertcmd

import (
	"errors"

	"github.com/goliatone/go-notedown/internal/commands"
	"github.com/goliatone/go-notedown/internal/jobs"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the conversion command handlers produced by RegisterConvertCommands.
type HandlerSet struct {
	Enqueue *EnqueueConvertHandler
	Process *ProcessDueHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	enqueueHandlerOpts []commands.HandlerOption[EnqueueConvertCommand]
	processHandlerOpts []commands.HandlerOption[ProcessDueCommand]
}

// WithEnqueueHandlerOptions forwards options to the EnqueueConvertHandler constructor.
func WithEnqueueHandlerOptions(opts ...commands.HandlerOption[EnqueueConvertCommand]) Option {
	return func(cfg *options) {
		cfg.enqueueHandlerOpts = append(cfg.enqueueHandlerOpts, opts...)
	}
}

// WithProcessHandlerOptions forwards options to the ProcessDueHandler constructor.
func WithProcessHandlerOptions(opts ...commands.HandlerOption[ProcessDueCommand]) Option {
	return func(cfg *options) {
		cfg.processHandlerOpts = append(cfg.processHandlerOpts, opts...)
	}
}

// RegisterConvertCommands builds conversion command handlers and registers them with the
// provided registry. A HandlerSet containing the constructed handlers is returned so callers
// can wire additional integrations (dispatcher, cron) as needed.
func RegisterConvertCommands(reg CommandRegistry, sched interfaces.Scheduler, worker *jobs.Worker, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if sched == nil {
		return nil, errors.New("convert command registration: scheduler is nil")
	}
	if worker == nil {
		return nil, errors.New("convert command registration: worker is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "convert")

	enqueueHandler := NewEnqueueConvertHandler(sched, logger, gates, cfg.enqueueHandlerOpts...)
	processHandler := NewProcessDueHandler(worker, logger, cfg.processHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(enqueueHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(processHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Enqueue: enqueueHandler,
		Process: processHandler,
	}, nil
}
