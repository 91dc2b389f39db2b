// Package buffer provides allocation helpers for real-time DSP code.
//
// An [Arena] owns one backing float64 slice that is carved into fixed-length
// sub-slices at initialisation time. Processors size the arena up front with
// a [Layout], take every working buffer from it, and never allocate again in
// their audio path. Re-initialisation (for example on a sample-rate change)
// simply builds a new arena.
package buffer
