package convertcmd

// FeatureGates exposes runtime feature toggles required by conversion command handlers.
// Callers should supply closures that read from notedown.Config.Features so handlers
// stay decoupled from configuration while honouring feature flags.
type FeatureGates struct {
	ConversionEnabled func() bool
}

func (g FeatureGates) conversionEnabled() bool {
	if g.ConversionEnabled == nil {
		return true
	}
	return g.ConversionEnabled()
}
