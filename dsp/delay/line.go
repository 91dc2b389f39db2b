package delay

import "fmt"

// Line is a circular delay line with a runtime-adjustable integer delay.
type Line struct {
	buffer   []float64
	writePos int
	delay    int
}

// New returns a delay line able to delay by up to maxDelay samples.
func New(maxDelay int) (*Line, error) {
	if maxDelay < 0 {
		return nil, fmt.Errorf("delay: max delay must be >= 0: %d", maxDelay)
	}
	return &Line{buffer: make([]float64, maxDelay+1)}, nil
}

// NewFromSlice builds a delay line over caller-owned storage. The line can
// delay by up to len(buf)-1 samples.
func NewFromSlice(buf []float64) (*Line, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("delay: storage must hold at least one sample")
	}
	d := &Line{buffer: buf}
	d.Reset()
	return d, nil
}

// MaxDelay returns the largest delay the line supports.
func (d *Line) MaxDelay() int {
	return len(d.buffer) - 1
}

// SetDelay sets the delay in samples, clamped to [0, MaxDelay()].
// Already buffered history is kept.
func (d *Line) SetDelay(samples int) {
	if samples < 0 {
		samples = 0
	}
	if m := d.MaxDelay(); samples > m {
		samples = m
	}
	d.delay = samples
}

// Delay returns the current delay in samples.
func (d *Line) Delay() int {
	return d.delay
}

// ProcessSample pushes x and returns the sample written Delay() samples ago.
func (d *Line) ProcessSample(x float64) float64 {
	size := len(d.buffer)
	d.buffer[d.writePos] = x

	readPos := d.writePos - d.delay
	if readPos < 0 {
		readPos += size
	}
	y := d.buffer[readPos]

	d.writePos++
	if d.writePos >= size {
		d.writePos = 0
	}
	return y
}

// Process delays src into dst. dst and src may be the same slice; dst must
// be at least as long as src.
func (d *Line) Process(dst, src []float64) {
	n := len(src)
	if n == 0 {
		return
	}
	_ = dst[n-1]
	for i := 0; i < n; i++ {
		dst[i] = d.ProcessSample(src[i])
	}
}

// Reset clears line state. The configured delay is kept.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
