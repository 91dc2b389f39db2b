// Package crossover provides a linear-phase multi-band crossover realized in
// the frequency domain.
//
// [FFT] runs a short-time Fourier transform with a periodic Hann analysis
// window at 50% overlap. Each band owns an optional high-pass and low-pass
// edge; band masks are zero-phase, so every band shares the same latency of
// one FFT frame.
//
// Bands are split as a cascade: band k sees the high-pass edges of every
// enabled band up to k and its own low-pass edge. When the low-pass of one
// band and the high-pass of the next use the same frequency and slope, the
// pair is complementary and the band outputs sum back to the delayed input.
//
// Example:
//
//	xo, _ := crossover.NewFFT(12, 2)
//	_ = xo.SetSampleRate(48000)
//	xo.SetLowPass(0, true, 1000, -36)
//	xo.SetHighPass(1, true, 1000, -36)
//	xo.SetHandler(func(band, offset int, data []float64) { ... })
//	xo.Process(input)
package crossover
