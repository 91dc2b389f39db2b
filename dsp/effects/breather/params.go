package breather

import (
	"math"

	"github.com/cwbudde/algo-breather/dsp/core"
)

const (
	// MaxBands is the number of bands per channel.
	MaxBands = 8
	// MaxSplits is the number of crossover split points.
	MaxSplits = MaxBands - 1
)

// Parameter ranges. Gains marked linear are amplitudes, everything else is
// in the unit named by the suffix.
const (
	FreqMin = 10.0
	FreqMax = 20000.0

	SlopeMin = 0.0
	SlopeMax = 72.0
	SlopeDfl = 36.0

	FlattenMin = 0.0
	FlattenMax = 6.0

	BandGainMaxDB = 12.0

	LongRMSMinMs  = 100.0
	LongRMSMaxMs  = 1000.0
	LongRMSDflMs  = 400.0
	ShortRMSMinMs = 0.1
	ShortRMSMaxMs = 20.0
	ShortRMSDflMs = 10.0

	RMSBiasMinDB   = -12.0
	RMSBiasMaxDB   = 12.0
	RMSMakeupMinDB = -12.0
	RMSMakeupMaxDB = 12.0
	// RMSMakeupShiftDB is added to the user makeup before conversion.
	RMSMakeupShiftDB = -12.0

	PFLookaheadMaxMs = 5.0
	PFAttackMaxMs    = 10.0
	PFAttackDflMs    = 1.0
	PFReleaseMaxMs   = 100.0
	PFReleaseDflMs   = 5.0
	PFThresholdMinDB = -24.0
	PFThresholdMaxDB = 24.0
	PFThresholdDflDB = -9.0
	PFReductionMinDB = -48.0
	PFReductionDflDB = -12.0
	PFZoneMinDB      = -24.0
	PFZoneDflDB      = -3.0

	BPAttackMaxMs    = 100.0
	BPAttackDflMs    = 10.0
	BPReleaseMaxMs   = 200.0
	BPReleaseDflMs   = 20.0
	BPTimeShiftMaxMs = 5.0
	BPThresholdMinDB = -72.0
	BPThresholdDflDB = -24.0
	BPRatioMin       = 1.0
	BPRatioMax       = 10.0
	BPRatioDfl       = 2.0
	BPMaxGainMaxDB   = 24.0
	BPMaxGainDflDB   = 6.0
)

var (
	defaultSplitFreqs   = [MaxSplits]float64{40, 100, 252, 632, 1587, 3984, 10000}
	defaultSplitEnabled = [MaxSplits]bool{false, true, false, true, false, true, false}
)

// SplitParams is one crossover cut point. Split i separates band i+1 from
// the band below it.
type SplitParams struct {
	Enabled   bool
	Frequency float64 // Hz
}

// BandParams holds the controls of one band. A single value is shared by
// every channel.
type BandParams struct {
	LowPassSlope  float64 // dB/oct of the attenuation above the band
	HighPassSlope float64 // dB/oct of the attenuation below the band
	Flatten       float64 // dB
	Gain          float64 // linear
	Solo          bool
	Mute          bool
	Listen        int // ListenCrossover .. ListenBeat

	LongRMS   float64 // ms
	ShortRMS  float64 // ms
	RMSBias   float64 // dB
	RMSMakeup float64 // dB, before RMSMakeupShiftDB

	PFLookahead float64 // ms
	PFAttack    float64 // ms
	PFRelease   float64 // ms
	PFThreshold float64 // linear
	PFReduction float64 // linear
	PFZone      float64 // linear

	BPAttack    float64 // ms
	BPRelease   float64 // ms
	BPTimeShift float64 // ms, positive delays the sidechain
	BPThreshold float64 // dB
	BPRatio     float64
	BPMaxGain   float64 // dB

	// FreqEnd is written by UpdateSettings: the upper edge of the band in Hz.
	FreqEnd float64
}

// Params is the complete control surface of a Processor.
type Params struct {
	Bypass      bool
	InGain      float64 // linear
	DryGain     float64 // linear
	WetGain     float64 // linear
	OutGain     float64 // linear
	StereoSplit bool

	Splits [MaxSplits]SplitParams
	Bands  [MaxBands]BandParams
}

// DefaultBandParams returns the factory settings of one band.
func DefaultBandParams() BandParams {
	return BandParams{
		LowPassSlope:  SlopeDfl,
		HighPassSlope: SlopeDfl,
		Gain:          1,
		Listen:        ListenDefault,
		LongRMS:       LongRMSDflMs,
		ShortRMS:      ShortRMSDflMs,
		PFAttack:      PFAttackDflMs,
		PFRelease:     PFReleaseDflMs,
		PFThreshold:   core.DBToLinear(PFThresholdDflDB),
		PFReduction:   core.DBToLinear(PFReductionDflDB),
		PFZone:        core.DBToLinear(PFZoneDflDB),
		BPAttack:      BPAttackDflMs,
		BPRelease:     BPReleaseDflMs,
		BPThreshold:   BPThresholdDflDB,
		BPRatio:       BPRatioDfl,
		BPMaxGain:     BPMaxGainDflDB,
	}
}

// DefaultParams returns the factory settings: four bands split at 100 Hz,
// 632 Hz and 3984 Hz, fully wet.
func DefaultParams() Params {
	p := Params{
		InGain:  1,
		DryGain: 0,
		WetGain: 1,
		OutGain: 1,
	}

	for i := range p.Splits {
		p.Splits[i] = SplitParams{Enabled: defaultSplitEnabled[i], Frequency: defaultSplitFreqs[i]}
	}

	for i := range p.Bands {
		p.Bands[i] = DefaultBandParams()
	}

	return p
}

// clampFinite clamps v to [lo, hi]; NaN maps to dfl.
func clampFinite(v, lo, hi, dfl float64) float64 {
	if math.IsNaN(v) {
		return dfl
	}

	return core.Clamp(v, lo, hi)
}

func (s SplitParams) frequency() float64 {
	return clampFinite(s.Frequency, FreqMin, FreqMax, FreqMin)
}

// normalized returns a copy with every control inside its range.
func (b *BandParams) normalized() BandParams {
	n := *b

	n.LowPassSlope = clampFinite(n.LowPassSlope, SlopeMin, SlopeMax, SlopeDfl)
	n.HighPassSlope = clampFinite(n.HighPassSlope, SlopeMin, SlopeMax, SlopeDfl)
	n.Flatten = clampFinite(n.Flatten, FlattenMin, FlattenMax, 0)
	n.Gain = clampFinite(n.Gain, 0, core.DBToLinear(BandGainMaxDB), 1)

	n.LongRMS = clampFinite(n.LongRMS, LongRMSMinMs, LongRMSMaxMs, LongRMSDflMs)
	n.ShortRMS = clampFinite(n.ShortRMS, ShortRMSMinMs, ShortRMSMaxMs, ShortRMSDflMs)
	n.RMSBias = clampFinite(n.RMSBias, RMSBiasMinDB, RMSBiasMaxDB, 0)
	n.RMSMakeup = clampFinite(n.RMSMakeup, RMSMakeupMinDB, RMSMakeupMaxDB, 0)

	n.PFLookahead = clampFinite(n.PFLookahead, 0, PFLookaheadMaxMs, 0)
	n.PFAttack = clampFinite(n.PFAttack, 0, PFAttackMaxMs, PFAttackDflMs)
	n.PFRelease = clampFinite(n.PFRelease, 0, PFReleaseMaxMs, PFReleaseDflMs)
	n.PFThreshold = clampFinite(n.PFThreshold,
		core.DBToLinear(PFThresholdMinDB), core.DBToLinear(PFThresholdMaxDB), core.DBToLinear(PFThresholdDflDB))
	n.PFReduction = clampFinite(n.PFReduction,
		core.DBToLinear(PFReductionMinDB), 1, core.DBToLinear(PFReductionDflDB))
	n.PFZone = clampFinite(n.PFZone, core.DBToLinear(PFZoneMinDB), 1, core.DBToLinear(PFZoneDflDB))

	n.BPAttack = clampFinite(n.BPAttack, 0, BPAttackMaxMs, BPAttackDflMs)
	n.BPRelease = clampFinite(n.BPRelease, 0, BPReleaseMaxMs, BPReleaseDflMs)
	n.BPTimeShift = clampFinite(n.BPTimeShift, -BPTimeShiftMaxMs, BPTimeShiftMaxMs, 0)
	n.BPThreshold = clampFinite(n.BPThreshold, BPThresholdMinDB, 0, BPThresholdDflDB)
	n.BPRatio = clampFinite(n.BPRatio, BPRatioMin, BPRatioMax, BPRatioDfl)
	n.BPMaxGain = clampFinite(n.BPMaxGain, 0, BPMaxGainMaxDB, BPMaxGainDflDB)

	return n
}
