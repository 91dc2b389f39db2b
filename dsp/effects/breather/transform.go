package breather

import (
	"math"

	"github.com/cwbudde/algo-breather/dsp/core"
)

// ratioEpsilon is the smallest expansion (ratio - 1) that still engages the
// beat processor gate.
const ratioEpsilon = 1e-3

// maxLogThreshold caps the derived gate threshold (in natural log) so that
// tiny expansion ratios stay finite.
const maxLogThreshold = 90.0

// beatGate holds the native gate settings derived from the user-facing
// threshold, ratio and maximum gain of the beat processor.
type beatGate struct {
	threshold float64 // linear
	zone      float64 // linear, <= 1
	reduction float64 // linear, <= 1
	makeup    float64 // linear, >= 1
}

// deriveBeatGate maps threshold (dB), ratio and maximum gain (dB) onto an
// expanding gate. The gate is closed (1/maxGain) at the user threshold and
// fully open at the derived threshold, so after makeup the band gain rises
// from unity to maxGain. A ratio within ratioEpsilon of 1 yields a
// transparent gate.
func deriveBeatGate(thresholdDB, ratio, maxGainDB float64) beatGate {
	userThreshold := core.DBToLinear(thresholdDB)
	r := ratio - 1

	if r < ratioEpsilon {
		return beatGate{threshold: userThreshold, zone: 1, reduction: 1, makeup: 1}
	}

	maxGain := core.DBToLinear(maxGainDB)
	logThreshold := min(math.Log(maxGain)/r+math.Log(userThreshold), maxLogThreshold)
	threshold := math.Exp(logThreshold)

	return beatGate{
		threshold: threshold,
		zone:      userThreshold / threshold,
		reduction: 1 / maxGain,
		makeup:    maxGain,
	}
}

// peakMakeup returns the flat ratio floor bias * makeup for dB controls.
func peakMakeup(biasDB, makeupDB float64) float64 {
	return core.DBToLinear(biasDB) * core.DBToLinear(makeupDB+RMSMakeupShiftDB)
}
