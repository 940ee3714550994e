package notedown

import "github.com/goliatone/go-notedown/internal/runtimeconfig"

var (
	ErrSchedulingFeatureRequired = runtimeconfig.ErrSchedulingFeatureRequired
	ErrWorkerBatchSizeInvalid    = runtimeconfig.ErrWorkerBatchSizeInvalid
	ErrWorkerMaxAttemptsInvalid  = runtimeconfig.ErrWorkerMaxAttemptsInvalid
	ErrWorkerRetryBackoffInvalid = runtimeconfig.ErrWorkerRetryBackoffInvalid
	ErrArtifactProviderUnknown   = runtimeconfig.ErrArtifactProviderUnknown
	ErrArtifactDSNRequired       = runtimeconfig.ErrArtifactDSNRequired
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                = runtimeconfig.Config
	WorkerConfig          = runtimeconfig.WorkerConfig
	ArtifactsConfig       = runtimeconfig.ArtifactsConfig
	MarkdownConfig        = runtimeconfig.MarkdownConfig
	MarkdownPreviewConfig = runtimeconfig.MarkdownPreviewConfig
	Features              = runtimeconfig.Features
	LoggingConfig         = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
