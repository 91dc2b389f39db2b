package breather

import "fmt"

// BandMode is the effective state of a band after split, solo and mute
// resolution.
type BandMode uint8

const (
	// ModeOff bands are not part of the current split set and do no work.
	ModeOff BandMode = iota
	// ModeMute bands are processed but not mixed.
	ModeMute
	// ModeBandFilter mixes the delay-aligned crossover output.
	ModeBandFilter
	// ModePeakDetector mixes the normalized RMS ratio.
	ModePeakDetector
	// ModePunchFilter mixes the gated ratio.
	ModePunchFilter
	// ModeBeatProcessor mixes the processed band audio.
	ModeBeatProcessor
)

// Listen selector values, in the order a host exposes them.
const (
	ListenCrossover = iota
	ListenRMS
	ListenPunch
	ListenBeat

	ListenDefault = ListenBeat
)

var modeNames = [...]string{
	ModeOff:           "off",
	ModeMute:          "mute",
	ModeBandFilter:    "band-filter",
	ModePeakDetector:  "peak-detector",
	ModePunchFilter:   "punch-filter",
	ModeBeatProcessor: "beat-processor",
}

func (m BandMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}

	return fmt.Sprintf("BandMode(%d)", m)
}

// Mixed reports whether the band contributes to the channel output.
func (m BandMode) Mixed() bool {
	return m >= ModeBandFilter
}

// biased reports whether the mixed stage carries the constant ratio floor.
func (m BandMode) biased() bool {
	return m == ModePeakDetector || m == ModePunchFilter
}

// DecodeListen maps a listen selector index to a band mode. Unknown indices
// turn the band off.
func DecodeListen(listen int) BandMode {
	switch listen {
	case ListenCrossover:
		return ModeBandFilter
	case ListenRMS:
		return ModePeakDetector
	case ListenPunch:
		return ModePunchFilter
	case ListenBeat:
		return ModeBeatProcessor
	default:
		return ModeOff
	}
}

// ParseListen accepts the names used by the CLI and returns the selector
// index.
func ParseListen(name string) (int, error) {
	switch name {
	case "crossover", "band":
		return ListenCrossover, nil
	case "rms", "peak":
		return ListenRMS, nil
	case "punch":
		return ListenPunch, nil
	case "beat":
		return ListenBeat, nil
	default:
		return 0, fmt.Errorf("breather: unknown listen stage %q", name)
	}
}
