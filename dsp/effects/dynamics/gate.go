package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-breather/dsp/core"
)

const (
	// Default gate parameters
	defaultGateThresholdDB = -24.0
	defaultGateZoneDB      = -6.0
	defaultGateReductionDB = -24.0
	defaultGateAttackMs    = 10.0
	defaultGateReleaseMs   = 20.0

	// Gate parameter validation ranges
	maxGateAttackMs  = 5000.0
	maxGateReleaseMs = 5000.0
)

// Gate is a sidechain-driven gain computer with a hysteresis-free transition
// zone.
//
// The gate does not touch audio itself. It follows the level of a sidechain
// signal with an attack/release envelope and maps the envelope to a gain:
//
//   - envelope at or below threshold*zone: gain = reduction
//   - envelope at or above threshold: gain = 1
//   - inside the zone: a smooth cubic transition in the log-log domain
//
// Threshold, zone and reduction are linear amplitudes. A zone of 1 gives a
// hard step at the threshold. A reduction of 1 makes the gate transparent
// regardless of the sidechain.
//
// Attack is used while the envelope rises and release while it falls. A time
// of 0 ms makes the follower track the sidechain instantly.
//
// This implementation is single-threaded and not thread-safe.
type Gate struct {
	threshold float64
	zone      float64
	reduction float64
	attackMs  float64
	releaseMs float64

	sampleRate float64

	envelope float64

	// Cached curve and time constants
	attackCoeff  float64
	releaseCoeff float64
	zoneStart    float64
	zoneEnd      float64
	logZoneStart float64
	invLogWidth  float64
	logReduction float64
}

// NewGate creates a gate with defaults of -24 dB threshold, -6 dB zone,
// -24 dB reduction, 10 ms attack and 20 ms release.
func NewGate(sampleRate float64) (*Gate, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("gate sample rate must be positive and finite: %f", sampleRate)
	}

	g := &Gate{
		threshold:  core.DBToLinear(defaultGateThresholdDB),
		zone:       core.DBToLinear(defaultGateZoneDB),
		reduction:  core.DBToLinear(defaultGateReductionDB),
		attackMs:   defaultGateAttackMs,
		releaseMs:  defaultGateReleaseMs,
		sampleRate: sampleRate,
	}

	g.updateCurve()
	g.updateTimeConstants()

	return g, nil
}

// SetThreshold sets the level, as a linear amplitude, at which the gate is
// fully open.
func (g *Gate) SetThreshold(linear float64) error {
	if linear <= 0 || !core.IsFinite(linear) {
		return fmt.Errorf("gate threshold must be positive and finite: %f", linear)
	}

	g.threshold = linear
	g.updateCurve()

	return nil
}

// SetZone sets the transition zone as a linear factor in (0, 1] below the
// threshold.
func (g *Gate) SetZone(linear float64) error {
	if linear <= 0 || linear > 1 || !core.IsFinite(linear) {
		return fmt.Errorf("gate zone must be in (0, 1]: %f", linear)
	}

	g.zone = linear
	g.updateCurve()

	return nil
}

// SetReduction sets the gain applied when the gate is closed, as a linear
// factor in (0, 1].
func (g *Gate) SetReduction(linear float64) error {
	if linear <= 0 || linear > 1 || !core.IsFinite(linear) {
		return fmt.Errorf("gate reduction must be in (0, 1]: %f", linear)
	}

	g.reduction = linear
	g.updateCurve()

	return nil
}

// SetAttack sets the attack time in milliseconds. Range: 0 to 5000 ms.
func (g *Gate) SetAttack(ms float64) error {
	if ms < 0 || ms > maxGateAttackMs || !core.IsFinite(ms) {
		return fmt.Errorf("gate attack must be in [0, %f]: %f", maxGateAttackMs, ms)
	}

	g.attackMs = ms
	g.updateTimeConstants()

	return nil
}

// SetRelease sets the release time in milliseconds. Range: 0 to 5000 ms.
func (g *Gate) SetRelease(ms float64) error {
	if ms < 0 || ms > maxGateReleaseMs || !core.IsFinite(ms) {
		return fmt.Errorf("gate release must be in [0, %f]: %f", maxGateReleaseMs, ms)
	}

	g.releaseMs = ms
	g.updateTimeConstants()

	return nil
}

// SetSampleRate updates sample rate and recalculates time constants.
func (g *Gate) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("gate sample rate must be positive and finite: %f", sampleRate)
	}

	g.sampleRate = sampleRate
	g.updateTimeConstants()

	return nil
}

// Threshold returns the current threshold as a linear amplitude.
func (g *Gate) Threshold() float64 { return g.threshold }

// Zone returns the current zone factor.
func (g *Gate) Zone() float64 { return g.zone }

// Reduction returns the current closed-gate gain.
func (g *Gate) Reduction() float64 { return g.reduction }

// Attack returns the current attack time in milliseconds.
func (g *Gate) Attack() float64 { return g.attackMs }

// Release returns the current release time in milliseconds.
func (g *Gate) Release() float64 { return g.releaseMs }

// SampleRate returns the current sample rate in Hz.
func (g *Gate) SampleRate() float64 { return g.sampleRate }

// Envelope returns the current follower state.
func (g *Gate) Envelope() float64 { return g.envelope }

// ProcessSample advances the envelope by one sidechain sample and returns
// the resulting gain.
func (g *Gate) ProcessSample(sidechain float64) float64 {
	level := math.Abs(sidechain)

	if level > g.envelope {
		g.envelope += (level - g.envelope) * g.attackCoeff
	} else {
		g.envelope = level + (g.envelope-level)*g.releaseCoeff
	}

	return g.gain(g.envelope)
}

// Process computes one gain per sidechain sample into gain. If env is not
// nil it receives the envelope. gain and env must be at least as long as
// sidechain; gain may alias sidechain.
func (g *Gate) Process(gain, env, sidechain []float64) {
	n := len(sidechain)
	if n == 0 {
		return
	}

	_ = gain[n-1]

	if env == nil {
		for i := 0; i < n; i++ {
			gain[i] = g.ProcessSample(sidechain[i])
		}

		return
	}

	_ = env[n-1]
	for i := 0; i < n; i++ {
		gain[i] = g.ProcessSample(sidechain[i])
		env[i] = g.envelope
	}
}

// Amplification writes the static gain for each level in levels into dst.
// No envelope state is touched.
func (g *Gate) Amplification(dst, levels []float64) {
	for i, x := range levels {
		dst[i] = g.gain(math.Abs(x))
	}
}

// Curve writes the static output level (level * gain) for each input level
// into dst. This is the transfer function used for visualization.
func (g *Gate) Curve(dst, levels []float64) {
	for i, x := range levels {
		x = math.Abs(x)
		dst[i] = x * g.gain(x)
	}
}

// Reset clears the envelope follower.
func (g *Gate) Reset() {
	g.envelope = 0
}

func (g *Gate) gain(x float64) float64 {
	if x >= g.zoneEnd {
		return 1
	}

	if x <= g.zoneStart {
		return g.reduction
	}

	t := (math.Log(x) - g.logZoneStart) * g.invLogWidth
	h := t * t * (3 - 2*t)

	return math.Exp(g.logReduction * (1 - h))
}

func (g *Gate) updateCurve() {
	g.zoneEnd = g.threshold
	g.zoneStart = g.threshold * g.zone
	g.logZoneStart = math.Log(g.zoneStart)
	g.logReduction = math.Log(g.reduction)

	if g.zoneEnd > g.zoneStart {
		g.invLogWidth = 1 / (math.Log(g.zoneEnd) - g.logZoneStart)
	} else {
		g.invLogWidth = 0
	}
}

// updateTimeConstants recalculates attack and release coefficients.
func (g *Gate) updateTimeConstants() {
	g.attackCoeff = attackCoefficient(g.attackMs, g.sampleRate)
	g.releaseCoeff = releaseCoefficient(g.releaseMs, g.sampleRate)
}

// attackCoefficient returns 1 - exp(-ln2 / (ms * sr)), or 1 for ms == 0.
func attackCoefficient(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 1
	}

	return 1.0 - math.Exp(-math.Ln2/(ms*0.001*sampleRate))
}

// releaseCoefficient returns exp(-ln2 / (ms * sr)), or 0 for ms == 0.
func releaseCoefficient(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 0
	}

	return math.Exp(-math.Ln2 / (ms * 0.001 * sampleRate))
}
