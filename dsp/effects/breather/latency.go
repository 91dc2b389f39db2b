package breather

// equalizeLatency pads every active band to the slowest band path and
// aligns the dry path with the total.
//
// A band path is the pre-delay followed by the band's own beat processor
// delay, so after this every active band reaches the mixer maxBandLatency
// samples after it left the crossover, in every channel.
func (p *Processor) equalizeLatency() {
	maxLatency := 0

	for i := range p.channels {
		for j := range p.channels[i].bands {
			if b := &p.channels[i].bands[j]; b.mode != ModeOff {
				maxLatency = max(maxLatency, b.bpLatency)
			}
		}
	}

	for i := range p.channels {
		c := &p.channels[i]

		for j := range c.bands {
			if b := &c.bands[j]; b.mode != ModeOff {
				b.preDelay.SetDelay(maxLatency - b.bpLatency)
			}
		}
	}

	p.maxBandLatency = maxLatency
	p.latency = maxLatency + p.channels[0].xover.Latency()

	for i := range p.channels {
		p.channels[i].inDelay.SetDelay(p.latency)
		p.channels[i].dryDelay.SetDelay(p.latency)
	}

	if p.reporter != nil {
		p.reporter(p.latency)
	}
}
