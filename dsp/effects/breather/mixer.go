package breather

import (
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-breather/dsp/core"
)

// detectPeaks runs the peak detector of every active band. Without stereo
// split both channels of a stereo pair follow the mid signal.
func (p *Processor) detectPeaks(n int) {
	if len(p.channels) == 2 && !p.stereoSplit {
		left, right := &p.channels[0], &p.channels[1]

		for j := range left.bands {
			l, r := &left.bands[j], &right.bands[j]
			if l.mode == ModeOff || r.mode == ModeOff {
				continue
			}

			mid := p.mid[:n]
			floats.AddTo(mid, l.inData[:n], r.inData[:n])
			f64.Scale(mid, mid, 0.5)

			l.detect(mid, n)
			r.detect(mid, n)
		}
	} else {
		for i := range p.channels {
			for j := range p.channels[i].bands {
				if b := &p.channels[i].bands[j]; b.mode != ModeOff {
					b.detect(b.inData, n)
				}
			}
		}
	}

	for i := range p.channels {
		for j := range p.channels[i].bands {
			if b := &p.channels[i].bands[j]; b.mode != ModeOff {
				b.normalize(n)
			}
		}
	}
}

// mixBands sums the listened stage of every mixed band into outData.
// Ratio stages carry a constant floor, so they are averaged rather than
// summed.
func (p *Processor) mixBands(c *channel, n int) {
	out := c.outData[:n]
	core.Zero(out)

	biased := 0
	for j := range c.bands {
		if c.bands[j].mode.biased() {
			biased++
		}
	}

	norm := 1.0
	if biased > 0 {
		norm = 1 / float64(biased)
	}

	for j := range c.bands {
		b := &c.bands[j]

		src := b.output(n)
		if src == nil {
			continue
		}

		g := b.gain
		if b.mode.biased() {
			g *= norm
		}

		floats.AddScaled(out, g, src)
		b.meters.OutLevel = max(b.meters.OutLevel, absMax(src)*g)
	}
}

// postProcess mixes dry and wet, then applies the bypass crossfade against
// the latency-aligned raw input. src is read before dst is written.
func (p *Processor) postProcess(c *channel, dst, src []float64) {
	n := len(src)
	dry := c.inData[:n]
	wet := c.outData[:n]

	c.inDelay.Process(dry, dry)
	c.meters.InLevel = max(c.meters.InLevel, absMax(dry))

	f64.Scale(wet, wet, p.wetGain)
	floats.AddScaled(wet, p.dryGain, dry)
	c.meters.OutLevel = max(c.meters.OutLevel, absMax(wet))

	raw := p.sc[:n]
	c.dryDelay.Process(raw, src)
	c.bypass.process(dst, raw, wet)
}
