package breather

import (
	"math"

	"github.com/cwbudde/algo-breather/dsp/filter/crossover"
)

const (
	// RankMin is the crossover FFT rank used at the reference sample rate.
	RankMin = 12
	// RankFreqMin is the reference sample rate of RankMin.
	RankFreqMin = 44100.0
)

// RankPolicy selects the crossover FFT size for a sample rate. Both policies
// agree at 44.1 and 48 kHz and differ at higher multiples.
type RankPolicy int

const (
	// RankAdditive grows the rank by one per doubling of the sample rate,
	// keeping the frequency resolution constant.
	RankAdditive RankPolicy = iota
	// RankShifted multiplies the base rank by the sample rate multiple.
	// The result is clamped to the largest supported FFT.
	RankShifted
)

// Rank returns the FFT rank for sampleRate.
func (p RankPolicy) Rank(sampleRate float64) int {
	multiple := max(math.Round(sampleRate/RankFreqMin), 1)
	n := int(math.Floor(math.Log2(multiple)))

	var rank int
	switch p {
	case RankShifted:
		rank = RankMin << min(n, 8)
	default:
		rank = RankMin + n
	}

	return min(max(rank, crossover.MinRank), crossover.MaxRank)
}

func (p RankPolicy) String() string {
	if p == RankShifted {
		return "shifted"
	}

	return "additive"
}

// LatencyReporter receives the processor latency in samples each time it is
// recomputed.
type LatencyReporter func(samples int)

type options struct {
	sampleRate float64
	blockSize  int
	rank       RankPolicy
	reporter   LatencyReporter
}

// Option configures a Processor at construction.
type Option func(*options)

// WithSampleRate sets the initial sample rate. Default 48000.
func WithSampleRate(sampleRate float64) Option {
	return func(o *options) {
		o.sampleRate = sampleRate
	}
}

// WithBlockSize sets the internal sub-block size, a power of two no larger
// than 65536. Default 1024.
func WithBlockSize(blockSize int) Option {
	return func(o *options) {
		o.blockSize = blockSize
	}
}

// WithRankPolicy selects how the crossover FFT size follows the sample rate.
func WithRankPolicy(p RankPolicy) Option {
	return func(o *options) {
		o.rank = p
	}
}

// WithLatencyReporter installs a callback for latency changes.
func WithLatencyReporter(fn LatencyReporter) Option {
	return func(o *options) {
		o.reporter = fn
	}
}
