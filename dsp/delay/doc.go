// Package delay provides integer-sample delay lines for latency alignment.
//
// A [Line] is sized once for its maximum delay and can then be retuned with
// [Line.SetDelay] at any time without allocating. Block processing accepts
// aliased source and destination slices.
package delay
