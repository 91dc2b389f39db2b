package dynamics

import (
	"fmt"
	"math"
)

// RMSFollower computes a moving-window RMS level.
//
// The follower keeps a ring of squared input samples sized for the largest
// window it will ever be asked for, plus a running sum over the active
// window. Changing the window length keeps history, so a follower can be
// retuned between blocks without a gap in its output. The sum is recomputed
// from the ring every time the write position wraps.
type RMSFollower struct {
	squares []float64
	index   int
	window  int
	sum     float64
}

// NewRMSFollower returns a follower whose window can grow up to maxWindow
// samples.
func NewRMSFollower(maxWindow int) (*RMSFollower, error) {
	if maxWindow < 1 {
		return nil, fmt.Errorf("rms window capacity must be >= 1: %d", maxWindow)
	}

	return NewRMSFollowerFromSlice(make([]float64, maxWindow))
}

// NewRMSFollowerFromSlice builds a follower over caller-owned storage.
// The window capacity is len(buf).
func NewRMSFollowerFromSlice(buf []float64) (*RMSFollower, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("rms window storage must hold at least one sample")
	}

	r := &RMSFollower{squares: buf, window: 1}
	r.Reset()

	return r, nil
}

// MaxWindow returns the window capacity in samples.
func (r *RMSFollower) MaxWindow() int { return len(r.squares) }

// Window returns the active window length in samples.
func (r *RMSFollower) Window() int { return r.window }

// SetWindow sets the window length, clamped to [1, MaxWindow()].
func (r *RMSFollower) SetWindow(samples int) {
	samples = min(max(samples, 1), len(r.squares))
	if samples == r.window {
		return
	}

	r.window = samples
	r.resum()
}

// ProcessSample pushes x and returns the RMS over the last Window() samples.
func (r *RMSFollower) ProcessSample(x float64) float64 {
	size := len(r.squares)

	oldest := r.index - r.window
	if oldest < 0 {
		oldest += size
	}

	square := x * x
	r.sum += square - r.squares[oldest]
	r.squares[r.index] = square

	r.index++
	if r.index >= size {
		r.index = 0
		// Rebuild the sum once per lap so rounding error cannot build up.
		r.resum()
	}

	mean := r.sum / float64(r.window)
	if mean <= 0 {
		r.sum = max(r.sum, 0)
		return 0
	}

	return math.Sqrt(mean)
}

// Process writes the RMS level of src into dst. dst may alias src.
func (r *RMSFollower) Process(dst, src []float64) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i := 0; i < n; i++ {
		dst[i] = r.ProcessSample(src[i])
	}
}

// Reset clears history.
func (r *RMSFollower) Reset() {
	for i := range r.squares {
		r.squares[i] = 0
	}

	r.index = 0
	r.sum = 0
}

// resum recomputes the running sum over the active window.
func (r *RMSFollower) resum() {
	size := len(r.squares)
	r.sum = 0

	// The entry at index is the oldest one in the ring and is overwritten
	// next, so the active window starts right after it.
	for k := 1; k <= r.window; k++ {
		j := r.index - k
		if j < 0 {
			j += size
		}
		r.sum += r.squares[j]
	}
}
