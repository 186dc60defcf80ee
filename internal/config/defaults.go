package config

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	defaultStrategy  = "candidates"
	defaultPrePad    = 1
	defaultPostPad   = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Range: Range{
			Strategy: defaultStrategy,
			PrePad:   defaultPrePad,
			PostPad:  defaultPostPad,
			Fallback: true,
		},
		Batch: Batch{
			SkipReady:          true,
			MuteExpressions:    true,
			RestoreExpressions: true,
			WipeAuxiliary:      false,
		},
		Host: Host{
			TimeoutSeconds: 0,
		},
	}
}
