// Package breather implements a multi-band transient shaper.
//
// The input of each channel is split into up to eight bands by a
// linear-phase FFT crossover. Every band runs three stages:
//
//   - peak detector: long and short moving RMS envelopes form a ratio that
//     rises above a flat floor (bias * makeup) while the band is transient
//   - punch filter: a lookahead gate shapes the ratio itself
//   - beat processor: a second gate driven by the punch output expands the
//     band audio, optionally shifted in time
//
// A listen selector chooses which stage of a band reaches the mixer, which is
// mostly useful when tuning a band. Every band path is padded so all of them
// reach the mixer with the same delay, and the dry path is delayed to match.
//
// [Processor] owns a [Params] value that the host edits between blocks.
// [Processor.UpdateSettings] commits the edits and [Processor.Process]
// renders audio. Neither method is safe for concurrent use, and Process does
// not allocate.
package breather
