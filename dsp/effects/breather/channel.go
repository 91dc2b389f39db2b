package breather

import (
	"github.com/cwbudde/algo-breather/dsp/delay"
	"github.com/cwbudde/algo-breather/dsp/filter/crossover"
)

type channel struct {
	xover *crossover.FFT
	bands [MaxBands]band
	slots [MaxBands]int // crossover band -> band index, -1 when unused

	inData   []float64 // scaled input, then the latency-aligned dry signal
	outData  []float64 // mixed bands
	inDelay  *delay.Line
	dryDelay *delay.Line
	bypass   bypass

	meters      ChannelMeters
	freqChart   []float64
	freqMesh    *Mesh
	historyMesh [MaxBands]*Mesh
}

// handleBand receives crossover output, pads it to the common band latency
// and stores it at the same offset of the band buffer.
func (c *channel) handleBand(slot, offset int, data []float64) {
	id := c.slots[slot]
	if id < 0 {
		return
	}

	b := &c.bands[id]
	dst := b.inData[offset : offset+len(data)]

	b.preDelay.Process(dst, data)
	b.meters.InLevel = max(b.meters.InLevel, absMax(dst))
}

func (c *channel) resetMeters() {
	c.meters = ChannelMeters{}
	for j := range c.bands {
		c.bands[j].meters.reset()
	}
}

func (c *channel) reset() {
	c.xover.Reset()
	c.inDelay.Reset()
	c.dryDelay.Reset()

	for j := range c.bands {
		c.bands[j].reset()
	}

	c.resetMeters()
}
