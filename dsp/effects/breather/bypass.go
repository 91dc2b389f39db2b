package breather

// bypassTime is the crossfade length in seconds.
const bypassTime = 0.005

// bypass crossfades between the processed and the dry signal.
type bypass struct {
	state  float64 // 0 = processed, 1 = dry
	target float64
	step   float64
}

func (b *bypass) init(sampleRate float64) {
	b.step = 1 / (bypassTime * sampleRate)
	b.state = b.target
}

func (b *bypass) set(on bool) {
	if on {
		b.target = 1
	} else {
		b.target = 0
	}
}

// process writes the crossfade of dry and wet into dst. dst may alias
// either input.
func (b *bypass) process(dst, dry, wet []float64) {
	if b.state == b.target {
		if b.state == 0 {
			copy(dst, wet)
		} else {
			copy(dst, dry)
		}

		return
	}

	for i := range dst {
		if b.state < b.target {
			b.state = min(b.state+b.step, b.target)
		} else {
			b.state = max(b.state-b.step, b.target)
		}

		dst[i] = wet[i] + (dry[i]-wet[i])*b.state
	}
}
