// Package window generates the analysis windows used by the STFT stages.
package window

import "math"

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeTriangle
)

var (
	hannCoeffs    = []float64{0.5, -0.5}
	hammingCoeffs = []float64{0.54, -0.46}
)

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic))
	}

	return out
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHann, size, opts...), validateLength(size)
}

// OverlapGain returns the constant that frames of coeffs, placed every hop
// samples, sum to. Windows whose overlapped sum is not flat return
// errNotConstantOverlap.
func OverlapGain(coeffs []float64, hop int) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	if hop <= 0 || len(coeffs)%hop != 0 {
		return 0, validateHop(len(coeffs), hop)
	}

	lo, hi := math.Inf(1), math.Inf(-1)

	for k := range hop {
		sum := 0.0
		for i := k; i < len(coeffs); i += hop {
			sum += coeffs[i]
		}

		lo = min(lo, sum)
		hi = max(hi, sum)
	}

	if hi-lo > overlapTolerance*math.Max(math.Abs(hi), 1) {
		return 0, errNotConstantOverlap
	}

	return (lo + hi) / 2, nil
}

func evalWindow(t Type, x float64) float64 {
	x = min(max(x, 0), 1)

	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeTriangle:
		if x <= 0.5 {
			return 2 * x
		}

		return 2 * (1 - x)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
