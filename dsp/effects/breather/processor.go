package breather

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/cwbudde/algo-breather/dsp/buffer"
	"github.com/cwbudde/algo-breather/dsp/core"
	"github.com/cwbudde/algo-breather/dsp/delay"
	"github.com/cwbudde/algo-breather/dsp/effects/dynamics"
	"github.com/cwbudde/algo-breather/dsp/filter/crossover"
	"github.com/cwbudde/algo-breather/dsp/meter"
)

// Processor is a mono or stereo beat breather.
//
// Edit the values returned by [Processor.Params], then call
// [Processor.UpdateSettings] before the next [Processor.Process]. Band
// parameters are shared by all channels.
type Processor struct {
	cfg      core.ProcessorConfig
	policy   RankPolicy
	reporter LatencyReporter

	params   Params
	channels []channel
	active   bool
	rank     int

	inGain      float64
	dryGain     float64
	wetGain     float64
	stereoSplit bool

	latency        int
	maxBandLatency int

	// Scratch shared by all bands, BlockSize each.
	gain []float64
	env  []float64
	sc   []float64
	mid  []float64

	axes     axes
	bandMesh [MaxBands]*Mesh
	pfMesh   [MaxBands]*Mesh
	bpMesh   [MaxBands]*Mesh
}

// New creates a processor for channels (1 or 2) audio channels with
// default parameters.
func New(channels int, opts ...Option) (*Processor, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cfg := core.ApplyProcessorOptions(core.WithBlockSize(o.blockSize))
	if o.blockSize != 0 && cfg.BlockSize != o.blockSize {
		return nil, fmt.Errorf("%w: %d", ErrBlockSize, o.blockSize)
	}

	sampleRate := cfg.SampleRate
	if o.sampleRate != 0 {
		sampleRate = o.sampleRate
	}

	p := &Processor{
		cfg:      cfg,
		policy:   o.rank,
		reporter: o.reporter,
		params:   DefaultParams(),
		channels: make([]channel, channels),
		axes:     newAxes(),
	}

	for j := range MaxBands {
		p.bandMesh[j] = newMesh(FreqMeshPoints + 2)
		p.pfMesh[j] = newMesh(CurveMeshPoints)
		p.bpMesh[j] = newMesh(CurveMeshPoints)
	}

	for i := range p.channels {
		c := &p.channels[i]
		c.freqChart = make([]float64, FreqMeshPoints)
		c.freqMesh = newMesh(FreqMeshPoints)

		for j := range c.bands {
			b := &c.bands[j]
			b.params = &p.params.Bands[j]
			b.freqChart = make([]float64, FreqMeshPoints)
			b.pfCurve = make([]float64, CurveMeshPoints)
			b.bpCurve = make([]float64, CurveMeshPoints)

			history, err := meter.NewGraph(TimeMeshPoints)
			if err != nil {
				return nil, err
			}
			b.history = history
			c.historyMesh[j] = newMesh(TimeMeshPoints)
		}
	}

	if err := p.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}

	return p, nil
}

// SetSampleRate sizes every buffer for sampleRate and clears all signal
// state. The crossovers are rebuilt only when the FFT rank changes. On
// error the processor stays inactive: Process renders silence and Latency
// reports 0.
func (p *Processor) SetSampleRate(sampleRate float64) error {
	p.active = false

	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	p.cfg.SampleRate = sampleRate

	if err := p.initCrossovers(); err != nil {
		return err
	}

	if err := p.initBuffers(); err != nil {
		return err
	}

	graphPeriod := max(int(math.Round(TimeHistory*sampleRate/TimeMeshPoints)), 1)

	for i := range p.channels {
		c := &p.channels[i]
		c.bypass.init(sampleRate)

		for j := range c.bands {
			b := &c.bands[j]
			if err := initGates(b, sampleRate); err != nil {
				return err
			}

			b.history.SetPeriod(graphPeriod)
			b.dirty = syncAll
			b.edges = edgeKey{}
			b.pfKey = gateKey{}
			b.bpKey = gateKey{}
		}

		c.reset()
	}

	p.active = true

	return p.UpdateSettings()
}

func (p *Processor) initCrossovers() error {
	rank := p.policy.Rank(p.cfg.SampleRate)

	if rank != p.rank || p.channels[0].xover == nil {
		for i := range p.channels {
			c := &p.channels[i]

			x, err := crossover.NewFFT(rank, MaxBands)
			if err != nil {
				return fmt.Errorf("breather: %w", err)
			}

			x.SetHandler(c.handleBand)
			x.SetPhase(float64(i) / float64(len(p.channels)))
			c.xover = x
		}

		p.rank = rank
	}

	for i := range p.channels {
		if err := p.channels[i].xover.SetSampleRate(p.cfg.SampleRate); err != nil {
			return fmt.Errorf("breather: %w", err)
		}
	}

	return nil
}

// bufferSizes are the capacities every buffer is carved with.
type bufferSizes struct {
	block    int
	long     int
	short    int
	band     int // largest beat processor path delay
	channel  int // largest channel latency
	look     int
	shift    int
	shortLag int
}

func (p *Processor) sizes() bufferSizes {
	sr := p.cfg.SampleRate
	s := bufferSizes{
		block: p.cfg.BlockSize,
		long:  max(core.MillisToSamples(sr, LongRMSMaxMs), 1),
		short: max(core.MillisToSamples(sr, ShortRMSMaxMs), 1),
		look:  core.MillisToSamples(sr, PFLookaheadMaxMs),
		shift: core.MillisToSamples(sr, BPTimeShiftMaxMs),
	}

	s.shortLag = s.long / 2
	s.band = s.long/2 + s.look + s.shift
	s.channel = s.band + (1 << p.rank)

	return s
}

// initBuffers carves every sample buffer and delay line from one arena.
func (p *Processor) initBuffers() error {
	s := p.sizes()
	bands := len(p.channels) * MaxBands

	var l buffer.Layout
	l.Add(s.block, 4)
	l.Add(s.block, 2*len(p.channels))
	l.Add(s.channel+1, 2*len(p.channels))
	l.Add(s.block, 4*bands)
	l.Add(s.band+1, 2*bands)
	l.Add(s.shortLag+1, bands)
	l.Add(s.look+1, bands)
	l.Add(s.shift+1, bands)
	l.Add(s.long, bands)
	l.Add(s.short, bands)

	a, err := buffer.NewArena(l)
	if err != nil {
		return fmt.Errorf("breather: %w", err)
	}

	p.gain = a.MustTake(s.block)
	p.env = a.MustTake(s.block)
	p.sc = a.MustTake(s.block)
	p.mid = a.MustTake(s.block)

	for i := range p.channels {
		c := &p.channels[i]
		c.inData = a.MustTake(s.block)
		c.outData = a.MustTake(s.block)
		c.inDelay = lineFrom(a, s.channel)
		c.dryDelay = lineFrom(a, s.channel)

		for j := range c.bands {
			b := &c.bands[j]
			b.inData = a.MustTake(s.block)
			b.rmsData = a.MustTake(s.block)
			b.pfData = a.MustTake(s.block)
			b.bpData = a.MustTake(s.block)

			b.preDelay = lineFrom(a, s.band)
			b.bpDelay = lineFrom(a, s.band)
			b.shortDelay = lineFrom(a, s.shortLag)
			b.pfDelay = lineFrom(a, s.look)
			b.bpScDelay = lineFrom(a, s.shift)
			b.long = followerFrom(a, s.long)
			b.short = followerFrom(a, s.short)
		}
	}

	return nil
}

// lineFrom carves a delay line holding up to maxDelay samples.
func lineFrom(a *buffer.Arena, maxDelay int) *delay.Line {
	d, err := delay.NewFromSlice(a.MustTake(maxDelay + 1))
	if err != nil {
		panic(err)
	}

	return d
}

// followerFrom carves an RMS follower with a window of up to window samples.
func followerFrom(a *buffer.Arena, window int) *dynamics.RMSFollower {
	r, err := dynamics.NewRMSFollowerFromSlice(a.MustTake(window))
	if err != nil {
		panic(err)
	}

	return r
}

func initGates(b *band, sampleRate float64) error {
	if b.pf == nil {
		pf, err := dynamics.NewGate(sampleRate)
		if err != nil {
			return fmt.Errorf("breather: %w", err)
		}

		bp, err := dynamics.NewGate(sampleRate)
		if err != nil {
			return fmt.Errorf("breather: %w", err)
		}

		b.pf, b.bp = pf, bp

		return nil
	}

	if err := b.pf.SetSampleRate(sampleRate); err != nil {
		return fmt.Errorf("breather: %w", err)
	}

	if err := b.bp.SetSampleRate(sampleRate); err != nil {
		return fmt.Errorf("breather: %w", err)
	}

	return nil
}

// Process renders one block. in and out hold one slice per channel; every
// out slice must be at least as long as in[0]. out may alias in. An inactive
// processor writes silence.
func (p *Processor) Process(out, in [][]float64) {
	if len(in) == 0 {
		return
	}

	n := len(in[0])

	if !p.active {
		for i := range out {
			core.Zero(out[i][:n])
		}

		return
	}

	for i := range p.channels {
		p.channels[i].resetMeters()
	}

	for offset := 0; offset < n; {
		k := min(p.cfg.BlockSize, n-offset)
		p.processBlock(out, in, offset, k)
		offset += k
	}

	p.publishMeshes()
}

func (p *Processor) processBlock(out, in [][]float64, offset, n int) {
	// Split: band buffers receive delay-compensated crossover output.
	for i := range p.channels {
		c := &p.channels[i]
		f64.Scale(c.inData[:n], in[i][offset:offset+n], p.inGain)
		c.xover.Process(c.inData[:n])
	}

	p.detectPeaks(n)

	for i := range p.channels {
		c := &p.channels[i]

		for j := range c.bands {
			b := &c.bands[j]
			if b.mode == ModeOff {
				continue
			}

			b.punch(p.gain, p.env, n)
			b.process(p.sc, p.gain, p.env, n)
		}
	}

	for i := range p.channels {
		c := &p.channels[i]
		p.mixBands(c, n)
		p.postProcess(c, out[i][offset:offset+n], in[i][offset:offset+n])
	}
}

// Reset clears all signal state and meters. Settings are kept.
func (p *Processor) Reset() {
	if !p.active {
		return
	}

	for i := range p.channels {
		p.channels[i].reset()
	}
}

// Params returns the parameter set. Changes take effect on the next
// UpdateSettings.
func (p *Processor) Params() *Params { return &p.params }

// Channels returns the channel count.
func (p *Processor) Channels() int { return len(p.channels) }

// SampleRate returns the current sample rate in Hz.
func (p *Processor) SampleRate() float64 { return p.cfg.SampleRate }

// BlockSize returns the internal sub-block size.
func (p *Processor) BlockSize() int { return p.cfg.BlockSize }

// Active reports whether the processor initialised successfully.
func (p *Processor) Active() bool { return p.active }

// Rank returns the crossover FFT rank.
func (p *Processor) Rank() int { return p.rank }

// Latency returns the processing latency in samples, or 0 when inactive.
func (p *Processor) Latency() int {
	if !p.active {
		return 0
	}

	return p.latency
}

// MaxBandLatency returns the common band path delay, excluding the
// crossover.
func (p *Processor) MaxBandLatency() int { return p.maxBandLatency }

// CrossoverLatency returns the delay added by the crossover.
func (p *Processor) CrossoverLatency() int {
	if !p.active {
		return 0
	}

	return p.channels[0].xover.Latency()
}

// BandMode returns the resolved mode of a band.
func (p *Processor) BandMode(ch, band int) BandMode {
	return p.channels[ch].bands[band].mode
}

// BandLatency returns the delay of a band path from crossover output to the
// mixer. All active bands report the same value.
func (p *Processor) BandLatency(ch, band int) int {
	return p.channels[ch].bands[band].latency()
}

// ChannelMeters returns the channel levels of the last Process call.
func (p *Processor) ChannelMeters(ch int) ChannelMeters {
	return p.channels[ch].meters
}

// BandMeters returns the band readings of the last Process call.
func (p *Processor) BandMeters(ch, band int) BandMeters {
	return p.channels[ch].bands[band].meters
}

// PeakHistory copies the peak detector history of a band into dst, newest
// point first.
func (p *Processor) PeakHistory(ch, band int, dst []float64) {
	p.channels[ch].bands[band].history.Read(dst)
}

// FreqMesh returns the channel transfer function mesh.
func (p *Processor) FreqMesh(ch int) *Mesh { return p.channels[ch].freqMesh }

// PeakHistoryMesh returns the peak detector history mesh of a band.
func (p *Processor) PeakHistoryMesh(ch, band int) *Mesh {
	return p.channels[ch].historyMesh[band]
}

// BandFreqMesh returns the frequency response mesh of a band.
func (p *Processor) BandFreqMesh(band int) *Mesh { return p.bandMesh[band] }

// PunchCurveMesh returns the punch filter transfer curve mesh of a band.
func (p *Processor) PunchCurveMesh(band int) *Mesh { return p.pfMesh[band] }

// BeatCurveMesh returns the beat processor transfer curve mesh of a band.
func (p *Processor) BeatCurveMesh(band int) *Mesh { return p.bpMesh[band] }

// UIActivated requests that every band curve is published again, for a
// display that just attached.
func (p *Processor) UIActivated() {
	for j := range p.channels[0].bands {
		p.channels[0].bands[j].dirty |= syncAll
	}
}

func (p *Processor) publishMeshes() {
	for i := range p.channels {
		c := &p.channels[i]
		publish(c.freqMesh, p.axes.freq, c.freqChart)

		for j := range c.bands {
			b := &c.bands[j]

			if m := c.historyMesh[j]; m.IsEmpty() {
				copy(m.x, p.axes.time)
				b.history.Read(m.y)
				m.commit()
			}

			if i != 0 {
				continue
			}

			if b.dirty&syncBandFilter != 0 && publishBandFreq(p.bandMesh[j], p.axes.freq, b.freqChart) {
				b.dirty &^= syncBandFilter
			}

			if b.dirty&syncPunchFilter != 0 && publish(p.pfMesh[j], p.axes.pf, b.pfCurve) {
				b.dirty &^= syncPunchFilter
			}

			if b.dirty&syncBeatProc != 0 && publish(p.bpMesh[j], p.axes.bp, b.bpCurve) {
				b.dirty &^= syncBeatProc
			}
		}
	}
}
