package core

import "fmt"

const (
	// MaxBlockSize bounds the internal sub-block size used by block processors.
	MaxBlockSize = 1 << 16
)

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for offline and streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  1024,
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

// WithBlockSize sets the internal processing block size. Values that are not
// a power of two or exceed [MaxBlockSize] are ignored.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if IsPowerOfTwo(blockSize) && blockSize <= MaxBlockSize {
			cfg.BlockSize = blockSize
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

// Validate reports whether the config can drive a block processor.
func (cfg ProcessorConfig) Validate() error {
	if !IsFinite(cfg.SampleRate) || cfg.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive and finite: %f", cfg.SampleRate)
	}
	if !IsPowerOfTwo(cfg.BlockSize) || cfg.BlockSize > MaxBlockSize {
		return fmt.Errorf("block size must be a power of two in [1, %d]: %d", MaxBlockSize, cfg.BlockSize)
	}
	return nil
}
