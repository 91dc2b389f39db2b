package breather

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-breather/dsp/core"
)

// GlobalGainMax bounds the input, dry, wet and output gains (+20 dB).
const GlobalGainMax = 10.0

// UpdateSettings commits the current Params: it re-sorts the splits,
// resolves band modes, reconfigures the crossovers, derives every band
// delay and gate, equalizes latency and reports it.
func (p *Processor) UpdateSettings() error {
	if !p.active {
		return ErrInactive
	}

	prm := &p.params
	sr := p.cfg.SampleRate

	outGain := clampFinite(prm.OutGain, 0, GlobalGainMax, 1)
	p.inGain = clampFinite(prm.InGain, 0, GlobalGainMax, 1)
	p.dryGain = outGain * clampFinite(prm.DryGain, 0, GlobalGainMax, 0)
	p.wetGain = outGain * clampFinite(prm.WetGain, 0, GlobalGainMax, 1)
	p.stereoSplit = len(p.channels) > 1 && prm.StereoSplit

	// Enabled splits in ascending frequency order.
	var order [MaxSplits]int
	nsplits := 0

	for i := range prm.Splits {
		if prm.Splits[i].Enabled {
			order[nsplits] = i
			nsplits++
		}
	}

	slices.SortStableFunc(order[:nsplits], func(a, b int) int {
		return cmp.Compare(prm.Splits[a].frequency(), prm.Splits[b].frequency())
	})

	var (
		modes   [MaxBands]BandMode
		edges   [MaxBands]edgeKey
		slotBuf [MaxBands]int
		hasSolo bool
	)

	slots := slotBuf[:0]

	for j := 0; j <= nsplits; j++ {
		id := 0
		if j > 0 {
			id = order[j-1] + 1
		}
		slots = append(slots, id)

		bp := &prm.Bands[id]
		norm := bp.normalized()

		modes[id] = DecodeListen(bp.Listen)
		key := edgeKey{active: true, flatten: core.DBToLinear(-norm.Flatten)}

		if j > 0 {
			key.hpOn = true
			key.hpFreq = prm.Splits[order[j-1]].frequency()
			key.hpSlope = -norm.HighPassSlope
		}

		if j < nsplits {
			key.lpOn = true
			key.lpFreq = prm.Splits[order[j]].frequency()
			key.lpSlope = -norm.LowPassSlope
			bp.FreqEnd = key.lpFreq
		} else {
			bp.FreqEnd = sr * 0.5
		}

		edges[id] = key
		hasSolo = hasSolo || bp.Solo
	}

	for i := range p.channels {
		if err := p.configureChannel(i, slots, &modes, &edges, hasSolo); err != nil {
			return err
		}
	}

	p.equalizeLatency()

	return nil
}

// configureChannel applies modes and edges to one channel. The crossover
// cascades its bands in index order, so crossover band k carries the band
// at slots[k], the k-th lowest in frequency.
func (p *Processor) configureChannel(ch int, slots []int, modes *[MaxBands]BandMode, edges *[MaxBands]edgeKey, hasSolo bool) error {
	c := &p.channels[ch]
	c.bypass.set(p.params.Bypass)
	xoverChanged := false

	for j := range c.bands {
		b := &c.bands[j]
		mode := modes[j]

		if mute := (hasSolo && !b.params.Solo) || b.params.Mute; mute && mode != ModeOff {
			mode = ModeMute
		}

		b.setMode(mode)

		if key := edges[j]; key != b.edges {
			b.edges = key
			xoverChanged = true
		}

		norm := b.params.normalized()
		if err := b.configure(p.cfg.SampleRate, &norm); err != nil {
			return fmt.Errorf("breather: band %d: %w", j, err)
		}
	}

	for k := range c.slots {
		if k >= len(slots) {
			c.slots[k] = -1
			c.xover.EnableBand(k, false)
			c.xover.SetHighPass(k, false, 0, 0)
			c.xover.SetLowPass(k, false, 0, 0)
			c.xover.SetFlatten(k, 1)

			continue
		}

		key := edges[slots[k]]
		c.slots[k] = slots[k]
		c.xover.SetHighPass(k, key.hpOn, key.hpFreq, key.hpSlope)
		c.xover.SetLowPass(k, key.lpOn, key.lpFreq, key.lpSlope)
		c.xover.SetFlatten(k, key.flatten)
		c.xover.EnableBand(k, true)
	}

	// Band responses are cascaded, so one changed edge touches every band.
	if xoverChanged {
		for j := range c.bands {
			b := &c.bands[j]
			core.Zero(b.freqChart)
			b.dirty |= syncBandFilter
		}

		for k, id := range slots {
			if err := c.xover.Response(k, c.bands[id].freqChart, p.axes.freq); err != nil {
				return fmt.Errorf("breather: %w", err)
			}
		}
	}

	core.Zero(c.freqChart)

	for j := range c.bands {
		b := &c.bands[j]
		if b.mode.Mixed() {
			floats.AddScaled(c.freqChart, b.gain, b.freqChart)
		}

		// Only the first channel publishes band curves.
		if ch == 0 {
			b.updateCurves(p.axes.pf, p.axes.bp)
		} else {
			b.dirty = 0
		}
	}

	return nil
}
