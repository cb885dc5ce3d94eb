package core

// ProcessorConfig defines common block-processing settings.
type ProcessorConfig struct {
	SampleRate     float64
	FramesPerBlock int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for offline and streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:     48000,
		FramesPerBlock: 512,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFramesPerBlock sets the number of audio frames per processing block.
func WithFramesPerBlock(frames int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if frames > 0 {
			cfg.FramesPerBlock = frames
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
