package crossover

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-breather/dsp/window"
)

const (
	// MinRank is the smallest supported FFT rank (size 1<<MinRank).
	MinRank = 4
	// MaxRank is the largest supported FFT rank.
	MaxRank = 16
	// MaxBands is the largest number of bands a single crossover splits into.
	MaxBands = 8
)

// ErrBand is returned for band indices outside the crossover.
var ErrBand = errors.New("crossover: band index out of range")

// Handler receives band output. offset is the position of data[0] within
// the buffer passed to Process.
type Handler func(band, offset int, data []float64)

// edge is one high-pass or low-pass slope.
type edge struct {
	enabled bool
	freq    float64
	slope   float64 // dB/oct, <= 0
}

type fftBand struct {
	hp      edge
	lp      edge
	flatten float64 // linear floor in (0, 1]
	enabled bool

	mask []float64 // full spectrum, len size
	out  []float64 // len hop, emitted over the next hop samples
	ovl  []float64 // len hop, second half of the previous frame
}

// FFT is a linear-phase crossover that splits a signal into up to
// [MaxBands] bands.
//
// Output is independent of how the input is chunked across Process calls.
// The latency is exactly one FFT frame, see [FFT.Latency].
type FFT struct {
	rank       int
	size       int
	hop        int
	sampleRate float64
	phase      float64

	plan   *algofft.Plan[complex128]
	window []float64
	input  []float64 // last size samples
	frame  []float64
	spec   []complex128
	work   []complex128

	bands   []fftBand
	pos     int
	dirty   bool
	handler Handler
}

// NewFFT creates a crossover with FFT size 1<<rank and the given number of
// bands. All bands start enabled with both edges disabled.
func NewFFT(rank, bands int) (*FFT, error) {
	if rank < MinRank || rank > MaxRank {
		return nil, fmt.Errorf("crossover: rank must be in [%d, %d], got %d", MinRank, MaxRank, rank)
	}
	if bands < 1 || bands > MaxBands {
		return nil, fmt.Errorf("crossover: bands must be in [1, %d], got %d", MaxBands, bands)
	}

	size := 1 << rank

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("crossover: failed to create FFT plan: %w", err)
	}

	coeffs, err := window.Hann(size, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("crossover: %w", err)
	}

	// Overlapped halves must sum to unity for transparent resynthesis.
	gain, err := window.OverlapGain(coeffs, size/2)
	if err != nil {
		return nil, fmt.Errorf("crossover: %w", err)
	}
	if gain != 1 {
		for i := range coeffs {
			coeffs[i] /= gain
		}
	}

	x := &FFT{
		rank:       rank,
		size:       size,
		hop:        size / 2,
		sampleRate: 48000,
		plan:       plan,
		window:     coeffs,
		input:      make([]float64, size),
		frame:      make([]float64, size),
		spec:       make([]complex128, size),
		work:       make([]complex128, size),
		bands:      make([]fftBand, bands),
		dirty:      true,
	}

	// Process has no error path, so the plan is checked once here.
	if err := x.plan.Forward(x.spec, x.spec); err != nil {
		return nil, fmt.Errorf("crossover: forward FFT failed: %w", err)
	}
	if err := x.plan.Inverse(x.work, x.work); err != nil {
		return nil, fmt.Errorf("crossover: inverse FFT failed: %w", err)
	}

	for b := range x.bands {
		x.bands[b] = fftBand{
			flatten: 1,
			enabled: true,
			mask:    make([]float64, size),
			out:     make([]float64, x.hop),
			ovl:     make([]float64, x.hop),
		}
	}

	return x, nil
}

// Rank returns the FFT rank.
func (x *FFT) Rank() int { return x.rank }

// Size returns the FFT size in samples.
func (x *FFT) Size() int { return x.size }

// Bands returns the number of bands.
func (x *FFT) Bands() int { return len(x.bands) }

// Latency returns the delay of every band output in samples.
func (x *FFT) Latency() int { return x.size }

// SampleRate returns the sample rate used to place edge frequencies.
func (x *FFT) SampleRate() float64 { return x.sampleRate }

// SetSampleRate sets the sample rate used to place edge frequencies.
func (x *FFT) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("crossover: sample rate must be positive and finite, got %v", sampleRate)
	}

	x.sampleRate = sampleRate
	x.dirty = true

	return nil
}

// SetHandler installs the band output callback.
func (x *FFT) SetHandler(h Handler) { x.handler = h }

// SetPhase sets the frame phase in [0, 1) used by Reset. Crossovers of
// different channels can be given different phases so their FFT frames do
// not all land on the same sample. Latency is unaffected.
func (x *FFT) SetPhase(phase float64) {
	phase -= math.Floor(phase)
	x.phase = phase
}

// EnableBand turns band output on or off. Disabled bands are not computed
// and never reach the handler.
func (x *FFT) EnableBand(band int, on bool) {
	if b := x.band(band); b != nil {
		b.enabled = on
	}
}

// BandEnabled reports whether a band is computed.
func (x *FFT) BandEnabled(band int) bool {
	if b := x.band(band); b != nil {
		return b.enabled
	}

	return false
}

// SetHighPass configures the high-pass edge of band. slope is the
// attenuation in dB per octave and is expected to be <= 0.
func (x *FFT) SetHighPass(band int, enabled bool, freq, slope float64) {
	if b := x.band(band); b != nil {
		b.hp = newEdge(enabled, freq, slope)
		x.dirty = true
	}
}

// SetLowPass configures the low-pass edge of band. slope is the
// attenuation in dB per octave and is expected to be <= 0.
func (x *FFT) SetLowPass(band int, enabled bool, freq, slope float64) {
	if b := x.band(band); b != nil {
		b.lp = newEdge(enabled, freq, slope)
		x.dirty = true
	}
}

// SetFlatten sets the linear gain in (0, 1] above which the band mask is
// raised to unity; mask values below it are scaled up by 1/floor.
func (x *FFT) SetFlatten(band int, floor float64) {
	if b := x.band(band); b != nil {
		if !(floor > 0) || floor > 1 {
			floor = 1
		}
		b.flatten = floor
		x.dirty = true
	}
}

// Process feeds input through the crossover and delivers band output for
// the same number of samples through the handler.
func (x *FFT) Process(in []float64) {
	if x.dirty {
		x.updateMasks()
	}

	for offset := 0; offset < len(in); {
		n := min(x.hop-x.pos, len(in)-offset)

		copy(x.input[x.hop+x.pos:], in[offset:offset+n])

		if x.handler != nil {
			for b := range x.bands {
				if x.bands[b].enabled {
					x.handler(b, offset, x.bands[b].out[x.pos:x.pos+n])
				}
			}
		}

		x.pos += n
		offset += n

		if x.pos == x.hop {
			x.processFrame()
			x.pos = 0
		}
	}
}

// Reset clears signal history and rewinds the frame position to the
// configured phase.
func (x *FFT) Reset() {
	clear(x.input)

	for b := range x.bands {
		clear(x.bands[b].out)
		clear(x.bands[b].ovl)
	}

	x.pos = int(x.phase * float64(x.hop))
}

// Response writes the magnitude response of band at each frequency in
// freqs into dst. The response matches the mask applied by Process.
func (x *FFT) Response(band int, dst, freqs []float64) error {
	if band < 0 || band >= len(x.bands) {
		return fmt.Errorf("%w: %d", ErrBand, band)
	}

	for i, f := range freqs {
		dst[i] = x.maskAt(band, f)
	}

	return nil
}

func (x *FFT) band(band int) *fftBand {
	if band < 0 || band >= len(x.bands) {
		return nil
	}

	return &x.bands[band]
}

func (x *FFT) processFrame() {
	vecmath.MulBlock(x.frame, x.input, x.window)

	for i, v := range x.frame {
		x.spec[i] = complex(v, 0)
	}

	// Both directions were validated for these buffers in NewFFT.
	_ = x.plan.Forward(x.spec, x.spec)

	for b := range x.bands {
		band := &x.bands[b]
		if !band.enabled {
			continue
		}

		for i, m := range band.mask {
			c := x.spec[i]
			x.work[i] = complex(real(c)*m, imag(c)*m)
		}

		_ = x.plan.Inverse(x.work, x.work)

		for i := 0; i < x.hop; i++ {
			band.out[i] = band.ovl[i] + real(x.work[i])
			band.ovl[i] = real(x.work[x.hop+i])
		}
	}

	copy(x.input, x.input[x.hop:])
}

func (x *FFT) updateMasks() {
	half := x.size / 2
	binHz := x.sampleRate / float64(x.size)

	for b := range x.bands {
		mask := x.bands[b].mask
		for k := 0; k <= half; k++ {
			mask[k] = x.maskAt(b, float64(k)*binHz)
		}
		for k := half + 1; k < x.size; k++ {
			mask[k] = mask[x.size-k]
		}
	}

	x.dirty = false
}

// maskAt evaluates the cascaded mask of band at frequency f.
func (x *FFT) maskAt(band int, f float64) float64 {
	b := &x.bands[band]

	m := 1.0
	if b.lp.enabled {
		m = 1 - b.lp.highPass(f)
	}

	for j := 0; j <= band; j++ {
		if j == band || x.bands[j].enabled {
			if hp := x.bands[j].hp; hp.enabled {
				m *= hp.highPass(f)
			}
		}
	}

	if m >= b.flatten {
		return 1
	}

	return m / b.flatten
}

func newEdge(enabled bool, freq, slope float64) edge {
	if slope > 0 || math.IsNaN(slope) {
		slope = 0
	}

	return edge{enabled: enabled && freq > 0, freq: freq, slope: slope}
}

// highPass returns the high-pass gain at f. The low-pass of the same edge
// is 1-highPass, so a shared edge splits into a complementary pair.
func (e edge) highPass(f float64) float64 {
	if e.slope == 0 {
		return 0.5
	}
	if f <= 0 {
		return 0
	}

	octaves := math.Log2(f / e.freq)
	g := 0.5 * math.Exp(e.slope*(math.Ln10/20)*math.Abs(octaves))

	if octaves < 0 {
		return g
	}

	return 1 - g
}
