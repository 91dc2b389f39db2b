package breather

import (
	"errors"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-breather/dsp/core"
	"github.com/cwbudde/algo-breather/dsp/delay"
	"github.com/cwbudde/algo-breather/dsp/effects/dynamics"
	"github.com/cwbudde/algo-breather/dsp/meter"
)

// dirtyBits flags display data that must be republished.
type dirtyBits uint8

const (
	syncBandFilter dirtyBits = 1 << iota
	syncPunchFilter
	syncBeatProc

	syncAll = syncBandFilter | syncPunchFilter | syncBeatProc
)

// edgeKey identifies the crossover configuration of a band.
type edgeKey struct {
	active  bool
	hpOn    bool
	hpFreq  float64
	hpSlope float64
	lpOn    bool
	lpFreq  float64
	lpSlope float64
	flatten float64
}

// gateKey identifies the static curve of a gate.
type gateKey struct {
	threshold float64
	zone      float64
	reduction float64
	makeup    float64
}

type band struct {
	params *BandParams // shared by all channels

	mode     BandMode
	gain     float64
	pdMakeup float64
	beat     beatGate

	// Sub-block buffers
	inData  []float64
	rmsData []float64
	pfData  []float64
	bpData  []float64

	preDelay   *delay.Line
	shortDelay *delay.Line
	pfDelay    *delay.Line
	bpScDelay  *delay.Line
	bpDelay    *delay.Line
	long       *dynamics.RMSFollower
	short      *dynamics.RMSFollower
	pf         *dynamics.Gate
	bp         *dynamics.Gate
	history    *meter.Graph

	pdLatency int
	bpLatency int

	meters BandMeters

	// Display state
	dirty     dirtyBits
	edges     edgeKey
	pfKey     gateKey
	bpKey     gateKey
	freqChart []float64
	pfCurve   []float64
	bpCurve   []float64
}

// configure derives every delay and gate setting of the band from p.
func (b *band) configure(sampleRate float64, p *BandParams) error {
	longSamples := max(core.MillisToSamples(sampleRate, p.LongRMS), 1)
	shortSamples := max(core.MillisToSamples(sampleRate, p.ShortRMS), 1)

	b.long.SetWindow(longSamples)
	b.short.SetWindow(shortSamples)

	// Center both windows on the same instant.
	b.shortDelay.SetDelay(longSamples/2 - shortSamples/2)
	b.pdLatency = longSamples / 2

	lookahead := core.MillisToSamples(sampleRate, p.PFLookahead)
	b.pfDelay.SetDelay(lookahead)

	b.bpScDelay.SetDelay(core.MillisToSamples(sampleRate, max(p.BPTimeShift, 0)))
	b.bpLatency = b.pdLatency + lookahead + core.MillisToSamples(sampleRate, max(-p.BPTimeShift, 0))
	b.bpDelay.SetDelay(b.bpLatency)

	b.gain = p.Gain
	b.pdMakeup = peakMakeup(p.RMSBias, p.RMSMakeup)
	b.beat = deriveBeatGate(p.BPThreshold, p.BPRatio, p.BPMaxGain)

	err := errors.Join(
		b.pf.SetThreshold(p.PFThreshold),
		b.pf.SetZone(p.PFZone),
		b.pf.SetReduction(p.PFReduction),
		b.pf.SetAttack(p.PFAttack),
		b.pf.SetRelease(p.PFRelease),
		b.bp.SetThreshold(b.beat.threshold),
		b.bp.SetZone(b.beat.zone),
		b.bp.SetReduction(b.beat.reduction),
		b.bp.SetAttack(p.BPAttack),
		b.bp.SetRelease(p.BPRelease),
	)
	if err != nil {
		return err
	}

	if key := (gateKey{p.PFThreshold, p.PFZone, p.PFReduction, 1}); key != b.pfKey {
		b.pfKey = key
		b.dirty |= syncPunchFilter
	}

	if key := (gateKey{b.beat.threshold, b.beat.zone, b.beat.reduction, b.beat.makeup}); key != b.bpKey {
		b.bpKey = key
		b.dirty |= syncBeatProc
	}

	return nil
}

// setMode applies a new mode and clears the time history on a transition
// into ModeOff.
func (b *band) setMode(mode BandMode) {
	if mode == ModeOff && b.mode != ModeOff {
		b.history.Clear()
	}

	b.mode = mode
}

// latency is the full delay of the band path from crossover to mixer.
func (b *band) latency() int {
	return b.preDelay.Delay() + b.bpLatency
}

// detect runs both RMS followers over src and aligns the short estimate.
func (b *band) detect(src []float64, n int) {
	b.long.Process(b.rmsData[:n], src[:n])
	b.short.Process(b.pfData[:n], src[:n])
	b.shortDelay.Process(b.pfData[:n], b.pfData[:n])
}

// normalize turns the envelopes into the transient ratio, stored in rmsData.
func (b *band) normalize(n int) {
	norm := b.pdMakeup
	long := b.rmsData[:n]
	short := b.pfData[:n]

	for i, l := range long {
		if s := short[i]; s > l && l >= core.GainM140DB {
			long[i] = s * norm / l
		} else {
			long[i] = norm
		}
	}

	b.history.Process(long)
	b.meters.PeakLevel = max(b.meters.PeakLevel, floats.Max(long))
}

// punch gates the ratio with itself and applies the gain to the lookahead
// delayed ratio, stored in pfData.
func (b *band) punch(gain, env []float64, n int) {
	b.pfDelay.Process(b.pfData[:n], b.rmsData[:n])
	b.pf.Process(gain[:n], env[:n], b.rmsData[:n])
	vecmath.MulBlockInPlace(b.pfData[:n], gain[:n])

	if idx := floats.MaxIdx(b.pfData[:n]); b.pfData[idx] > b.meters.PunchCurve {
		b.meters.PunchCurve = b.pfData[idx]
		b.meters.PunchEnvelope = env[idx]
	}

	b.meters.PunchGain = min(b.meters.PunchGain, floats.Min(gain[:n]))
}

// process expands the band audio with a gate driven by the shifted punch
// output. inData is delayed in place, bpData receives the result.
func (b *band) process(sc, gain, env []float64, n int) {
	b.bpScDelay.Process(sc[:n], b.pfData[:n])
	b.bp.Process(gain[:n], env[:n], sc[:n])
	f64.Scale(gain[:n], gain[:n], b.beat.makeup)

	b.bpDelay.Process(b.inData[:n], b.inData[:n])
	vecmath.MulBlock(b.bpData[:n], b.inData[:n], gain[:n])

	if idx := floats.MaxIdx(gain[:n]); gain[idx] > b.meters.BeatGain {
		b.meters.BeatGain = gain[idx]
		b.meters.BeatEnvelope = env[idx]
		b.meters.BeatCurve = env[idx] * gain[idx]
	}
}

// output returns the signal selected by the listen mode.
func (b *band) output(n int) []float64 {
	switch b.mode {
	case ModeBandFilter:
		return b.inData[:n]
	case ModePeakDetector:
		return b.rmsData[:n]
	case ModePunchFilter:
		return b.pfData[:n]
	case ModeBeatProcessor:
		return b.bpData[:n]
	default:
		return nil
	}
}

// updateCurves recomputes the static transfer curves for display.
func (b *band) updateCurves(pfAxis, bpAxis []float64) {
	if b.dirty&syncPunchFilter != 0 {
		b.pf.Curve(b.pfCurve, pfAxis)
	}

	if b.dirty&syncBeatProc != 0 {
		b.bp.Curve(b.bpCurve, bpAxis)
		f64.Scale(b.bpCurve, b.bpCurve, b.beat.makeup)
	}
}

func (b *band) reset() {
	b.preDelay.Reset()
	b.shortDelay.Reset()
	b.pfDelay.Reset()
	b.bpScDelay.Reset()
	b.bpDelay.Reset()
	b.long.Reset()
	b.short.Reset()
	b.pf.Reset()
	b.bp.Reset()
	b.history.Clear()
}

// absMax returns the largest magnitude in s, or 0 for an empty slice.
func absMax(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}

	return math.Max(math.Abs(floats.Max(s)), math.Abs(floats.Min(s)))
}
