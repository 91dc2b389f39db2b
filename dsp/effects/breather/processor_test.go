package breather

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-breather/dsp/core"
	"github.com/cwbudde/algo-breather/dsp/filter/crossover"
	"github.com/cwbudde/algo-breather/dsp/meter"
	"github.com/cwbudde/algo-breather/internal/testutil"
)

func newTestProcessor(t testing.TB, channels int, opts ...Option) *Processor {
	t.Helper()

	p, err := New(channels, opts...)
	require.NoError(t, err)

	return p
}

// render processes in with calls of at most chunk samples and returns the
// output.
func render(p *Processor, in [][]float64, chunk int) [][]float64 {
	out := make([][]float64, len(in))
	for i := range out {
		out[i] = make([]float64, len(in[i]))
	}

	n := len(in[0])
	for offset := 0; offset < n; offset += chunk {
		end := min(offset+chunk, n)

		ins := make([][]float64, len(in))
		outs := make([][]float64, len(in))
		for i := range in {
			ins[i] = in[i][offset:end]
			outs[i] = out[i][offset:end]
		}

		p.Process(outs, ins)
	}

	return out
}

// onlySplits disables every split and enables the given ones.
func onlySplits(prm *Params, splits map[int]float64) {
	for i := range prm.Splits {
		prm.Splits[i].Enabled = false
	}

	for i, f := range splits {
		prm.Splits[i] = SplitParams{Enabled: true, Frequency: f}
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, ErrInvalidChannels)

	_, err = New(3)
	require.ErrorIs(t, err, ErrInvalidChannels)

	_, err = New(1, WithBlockSize(1000))
	require.ErrorIs(t, err, ErrBlockSize)

	_, err = New(1, WithSampleRate(-1))
	require.ErrorIs(t, err, ErrInvalidSampleRate)

	p := newTestProcessor(t, 2, WithBlockSize(256), WithSampleRate(44100))
	assert.Equal(t, 2, p.Channels())
	assert.Equal(t, 256, p.BlockSize())
	assert.InDelta(t, 44100.0, p.SampleRate(), 0)
	assert.True(t, p.Active())
}

func TestDefaults(t *testing.T) {
	p := newTestProcessor(t, 1)

	assert.Equal(t, 12, p.Rank())
	assert.Equal(t, 4096, p.CrossoverLatency())
	assert.Equal(t, 9600, p.MaxBandLatency())
	assert.Equal(t, 9600+4096, p.Latency())

	wantModes := [MaxBands]BandMode{
		ModeBeatProcessor, ModeOff, ModeBeatProcessor, ModeOff,
		ModeBeatProcessor, ModeOff, ModeBeatProcessor, ModeOff,
	}
	for j, want := range wantModes {
		assert.Equal(t, want, p.BandMode(0, j), "band %d", j)
	}

	prm := p.Params()
	assert.InDelta(t, 100.0, prm.Bands[0].FreqEnd, 0)
	assert.InDelta(t, 632.0, prm.Bands[2].FreqEnd, 0)
	assert.InDelta(t, 3984.0, prm.Bands[4].FreqEnd, 0)
	assert.InDelta(t, 24000.0, prm.Bands[6].FreqEnd, 0)
}

func TestRankPolicy(t *testing.T) {
	tests := []struct {
		policy     RankPolicy
		sampleRate float64
		want       int
	}{
		{RankAdditive, 8000, 12},
		{RankAdditive, 22050, 12},
		{RankAdditive, 44100, 12},
		{RankAdditive, 48000, 12},
		{RankAdditive, 88200, 13},
		{RankAdditive, 96000, 13},
		{RankAdditive, 192000, 14},
		{RankAdditive, 384000, 15},
		{RankShifted, 44100, 12},
		{RankShifted, 48000, 12},
		{RankShifted, 96000, crossover.MaxRank},
		{RankShifted, 192000, crossover.MaxRank},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Rank(tt.sampleRate), "sample rate %v", tt.sampleRate)
		})
	}
}

func TestSetSampleRateKeepsCrossoverForSameRank(t *testing.T) {
	p := newTestProcessor(t, 2)
	before := p.channels[0].xover

	require.NoError(t, p.SetSampleRate(44100))
	assert.Same(t, before, p.channels[0].xover)
	assert.Equal(t, 12, p.Rank())

	require.NoError(t, p.SetSampleRate(96000))
	assert.NotSame(t, before, p.channels[0].xover)
	assert.Equal(t, 13, p.Rank())
	assert.Equal(t, 8192, p.CrossoverLatency())
}

func TestInactiveProcessor(t *testing.T) {
	p := newTestProcessor(t, 1)

	require.ErrorIs(t, p.SetSampleRate(0), ErrInvalidSampleRate)
	assert.False(t, p.Active())
	assert.Equal(t, 0, p.Latency())
	assert.ErrorIs(t, p.UpdateSettings(), ErrInactive)

	in := [][]float64{testutil.DeterministicNoise(1, 1, 512)}
	out := [][]float64{testutil.Ones(512)}
	p.Process(out, in)

	for i, v := range out[0] {
		require.Zero(t, v, "sample %d", i)
	}

	require.NoError(t, p.SetSampleRate(48000))
	assert.True(t, p.Active())
	assert.Equal(t, 13696, p.Latency())
}

func TestLatencyIsEqualizedAcrossBands(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := range 20 {
		p := newTestProcessor(t, 2)
		prm := p.Params()

		for i := range prm.Splits {
			prm.Splits[i].Enabled = rng.Intn(2) == 0
			prm.Splits[i].Frequency = 20 + rng.Float64()*15000
		}

		for j := range prm.Bands {
			b := &prm.Bands[j]
			b.LongRMS = LongRMSMinMs + rng.Float64()*(LongRMSMaxMs-LongRMSMinMs)
			b.ShortRMS = ShortRMSMinMs + rng.Float64()*(ShortRMSMaxMs-ShortRMSMinMs)
			b.PFLookahead = rng.Float64() * PFLookaheadMaxMs
			b.BPTimeShift = (rng.Float64()*2 - 1) * BPTimeShiftMaxMs
			b.Listen = rng.Intn(4)
			b.Mute = rng.Intn(5) == 0
		}

		require.NoError(t, p.UpdateSettings())

		want := p.MaxBandLatency()
		assert.Equal(t, want+p.CrossoverLatency(), p.Latency(), "trial %d", trial)

		for ch := range 2 {
			for j := range MaxBands {
				if p.BandMode(ch, j) == ModeOff {
					continue
				}

				assert.Equal(t, want, p.BandLatency(ch, j), "trial %d channel %d band %d", trial, ch, j)
			}
		}
	}
}

func TestLatencyNeverDecreasesWithLongerDelays(t *testing.T) {
	tests := []struct {
		name string
		set  func(b *BandParams, v float64)
		from float64
		to   float64
	}{
		{"long rms", func(b *BandParams, v float64) { b.LongRMS = v }, LongRMSMinMs, LongRMSMaxMs},
		{"lookahead", func(b *BandParams, v float64) { b.PFLookahead = v }, 0, PFLookaheadMaxMs},
		{"negative shift", func(b *BandParams, v float64) { b.BPTimeShift = -v }, 0, BPTimeShiftMaxMs},
		{"positive shift", func(b *BandParams, v float64) { b.BPTimeShift = v }, 0, BPTimeShiftMaxMs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t, 1)
			prev := 0

			for step := range 11 {
				v := tt.from + (tt.to-tt.from)*float64(step)/10
				tt.set(&p.Params().Bands[2], v)
				require.NoError(t, p.UpdateSettings())

				assert.GreaterOrEqual(t, p.Latency(), prev, "value %v", v)
				prev = p.Latency()
			}
		})
	}
}

func TestLatencyReporter(t *testing.T) {
	var reported []int

	p := newTestProcessor(t, 1, WithLatencyReporter(func(samples int) {
		reported = append(reported, samples)
	}))
	require.NotEmpty(t, reported)
	assert.Equal(t, p.Latency(), reported[len(reported)-1])

	p.Params().Bands[0].PFLookahead = 5
	require.NoError(t, p.UpdateSettings())
	assert.Equal(t, 9600+240+4096, reported[len(reported)-1])
}

func TestTwoBandCrossoverMatchesStandaloneCrossover(t *testing.T) {
	p := newTestProcessor(t, 1)
	prm := p.Params()
	onlySplits(prm, map[int]float64{0: 1000})
	prm.Bands[0].Listen = ListenCrossover
	prm.Bands[1].Mute = true
	require.NoError(t, p.UpdateSettings())

	assert.Equal(t, ModeBandFilter, p.BandMode(0, 0))
	assert.Equal(t, ModeMute, p.BandMode(0, 1))
	assert.Equal(t, 9600, p.MaxBandLatency())
	assert.Equal(t, 9600+4096, p.Latency())

	n := p.Latency() + 8192
	in := testutil.Impulse(n, 0)
	out := render(p, [][]float64{in}, 1000)[0]

	ref, err := crossover.NewFFT(12, 2)
	require.NoError(t, err)
	require.NoError(t, ref.SetSampleRate(48000))
	ref.SetLowPass(0, true, 1000, -SlopeDfl)
	ref.SetHighPass(1, true, 1000, -SlopeDfl)

	want := make([]float64, n)
	ref.SetHandler(func(band, offset int, data []float64) {
		if band == 0 {
			copy(want[offset:], data)
		}
	})
	ref.Process(in)

	testutil.RequireDelayedNearlyEqual(t, out, want, p.MaxBandLatency(), 1e-12)
}

func TestBiasedModesAreAveraged(t *testing.T) {
	p := newTestProcessor(t, 1)
	prm := p.Params()
	onlySplits(prm, map[int]float64{0: 200, 1: 2000})

	gains := []float64{0.5, 1, 2}
	for j, g := range gains {
		prm.Bands[j].Listen = ListenRMS
		prm.Bands[j].Gain = g
	}
	require.NoError(t, p.UpdateSettings())

	out := render(p, [][]float64{make([]float64, 4096)}, 4096)[0]

	v := peakMakeup(0, 0)
	want := 0.0
	for _, g := range gains {
		want += v * (g / 3)
	}

	for i, x := range out {
		require.InDelta(t, want, x, 1e-12, "sample %d", i)
	}
}

func TestSingleBiasedBandIsNotScaled(t *testing.T) {
	p := newTestProcessor(t, 1)
	prm := p.Params()
	onlySplits(prm, map[int]float64{0: 200})
	prm.Bands[0].Listen = ListenRMS
	prm.Bands[0].RMSBias = 6
	prm.Bands[1].Listen = ListenCrossover
	require.NoError(t, p.UpdateSettings())

	out := render(p, [][]float64{make([]float64, 2048)}, 512)[0]

	want := peakMakeup(6, 0)
	for i, x := range out {
		require.InDelta(t, want, x, 1e-12, "sample %d", i)
	}
}

func TestRatioCollapsesToBias(t *testing.T) {
	g, err := meter.NewGraph(TimeMeshPoints)
	require.NoError(t, err)

	b := band{
		history:  g,
		pdMakeup: 0.5,
		rmsData:  []float64{0.5, 1e-8, 0.3, 0.2, 0},
		pfData:   []float64{1.0, 1.0, 0.3, 0.1, 0},
	}
	b.normalize(5)

	assert.Equal(t, []float64{1.0, 0.5, 0.5, 0.5, 0.5}, b.rmsData)
	assert.InDelta(t, 1.0, b.meters.PeakLevel, 0)
}

func TestBeatProcessorWithUnitRatioIsTransparent(t *testing.T) {
	in := [][]float64{testutil.Mix(
		testutil.ClickTrain(4800, 48000, 0.8),
		testutil.DeterministicNoise(3, 0.1, 48000),
	)}

	setup := func(listen int) *Processor {
		p := newTestProcessor(t, 1)
		prm := p.Params()
		onlySplits(prm, map[int]float64{2: 500})
		prm.Bands[0].Listen = listen
		prm.Bands[0].BPRatio = 1.0005
		prm.Bands[3].Listen = listen
		prm.Bands[3].BPRatio = 1
		require.NoError(t, p.UpdateSettings())

		return p
	}

	beat := render(setup(ListenBeat), in, 1024)[0]
	filter := render(setup(ListenCrossover), in, 1024)[0]

	assert.Equal(t, filter, beat)
}

func TestBeatProcessorRaisesTransients(t *testing.T) {
	n := 48000
	in := [][]float64{testutil.Mix(
		testutil.ClickTrain(4800, n, 0.9),
		testutil.DeterministicNoise(4, 0.02, n),
	)}

	setup := func(listen int) *Processor {
		p := newTestProcessor(t, 1)
		onlySplits(p.Params(), nil)
		p.Params().Bands[0].Listen = listen
		require.NoError(t, p.UpdateSettings())

		return p
	}

	bp := setup(ListenBeat)
	beat := render(bp, in, n)[0]
	filter := render(setup(ListenCrossover), in, n)[0]

	// The expanding gate never attenuates.
	for i := range beat {
		require.GreaterOrEqual(t, math.Abs(beat[i]), math.Abs(filter[i])-1e-12, "sample %d", i)
	}

	peak := func(s []float64) float64 { return math.Max(floats.Max(s), -floats.Min(s)) }
	assert.Greater(t, peak(beat), 1.5*peak(filter))

	m := bp.BandMeters(0, 0)
	assert.Greater(t, m.BeatGain, 1.5)
	assert.LessOrEqual(t, m.BeatGain, core.DBToLinear(BPMaxGainDflDB)+1e-12)
	assert.Positive(t, m.BeatEnvelope)
}

func TestChunkSizeDoesNotChangeOutput(t *testing.T) {
	left := testutil.Mix(testutil.ClickTrain(3000, 30000, 0.9), testutil.DeterministicNoise(11, 0.2, 30000))
	right := testutil.Mix(testutil.ClickTrain(2100, 30000, 0.5), testutil.DeterministicNoise(12, 0.2, 30000))

	for _, stereoSplit := range []bool{false, true} {
		setup := func(opts ...Option) *Processor {
			p := newTestProcessor(t, 2, opts...)
			p.Params().StereoSplit = stereoSplit
			p.Params().DryGain = 0.3
			p.Params().Bands[2].Listen = ListenPunch
			p.Params().Bands[4].Listen = ListenRMS
			require.NoError(t, p.UpdateSettings())

			return p
		}

		ref := render(setup(), [][]float64{left, right}, len(left))

		for _, chunk := range []int{1, 7, 333, 1024, 5000} {
			got := render(setup(), [][]float64{left, right}, chunk)
			require.Equal(t, ref, got, "stereo split %v chunk %d", stereoSplit, chunk)
		}

		got := render(setup(WithBlockSize(64)), [][]float64{left, right}, 1000)
		require.Equal(t, ref, got, "stereo split %v block size 64", stereoSplit)
	}
}

func TestProcessInPlace(t *testing.T) {
	in := testutil.DeterministicNoise(5, 0.5, 20000)

	ref := render(newTestProcessor(t, 1), [][]float64{in}, 512)[0]

	p := newTestProcessor(t, 1)
	buf := append([]float64(nil), in...)
	for offset := 0; offset < len(buf); offset += 512 {
		block := [][]float64{buf[offset:min(offset+512, len(buf))]}
		p.Process(block, block)
	}

	assert.Equal(t, ref, buf)
}

func TestStereoSidechainIsShared(t *testing.T) {
	n := 24000
	in := [][]float64{
		testutil.Mix(testutil.ClickTrain(4000, n, 0.8), testutil.DeterministicNoise(9, 0.1, n)),
		make([]float64, n),
	}

	p := newTestProcessor(t, 2)
	render(p, in, 1024)

	left := make([]float64, TimeMeshPoints)
	right := make([]float64, TimeMeshPoints)
	p.PeakHistory(0, 2, left)
	p.PeakHistory(1, 2, right)
	assert.Equal(t, left, right)
	assert.Equal(t, p.BandMeters(0, 2).PeakLevel, p.BandMeters(1, 2).PeakLevel)

	p = newTestProcessor(t, 2)
	p.Params().StereoSplit = true
	require.NoError(t, p.UpdateSettings())
	render(p, in, 1024)

	// The silent channel sees only the ratio floor.
	v := peakMakeup(0, 0)
	p.PeakHistory(0, 2, left)
	p.PeakHistory(1, 2, right)
	assert.Greater(t, floats.Max(left), v)
	assert.InDelta(t, v, floats.Max(right), 0)
	assert.InDelta(t, v, p.BandMeters(1, 2).PeakLevel, 0)
}

func TestDisabledBandClearsHistory(t *testing.T) {
	p := newTestProcessor(t, 1)
	render(p, [][]float64{testutil.DeterministicNoise(2, 0.5, 48000)}, 4096)

	hist := make([]float64, TimeMeshPoints)
	p.PeakHistory(0, 2, hist)
	assert.Positive(t, floats.Max(hist))

	p.Params().Splits[1].Enabled = false
	require.NoError(t, p.UpdateSettings())
	assert.Equal(t, ModeOff, p.BandMode(0, 2))

	p.PeakHistory(0, 2, hist)
	assert.Equal(t, make([]float64, TimeMeshPoints), hist)

	// Off bands stay silent and keep their history empty.
	render(p, [][]float64{testutil.DeterministicNoise(4, 0.5, 4800)}, 4800)
	p.PeakHistory(0, 2, hist)
	assert.Equal(t, make([]float64, TimeMeshPoints), hist)
	assert.Zero(t, p.BandMeters(0, 2).InLevel)
}

func TestSoloAndMute(t *testing.T) {
	p := newTestProcessor(t, 1)
	prm := p.Params()
	prm.Bands[2].Solo = true
	prm.Bands[4].Mute = true
	require.NoError(t, p.UpdateSettings())

	assert.Equal(t, ModeMute, p.BandMode(0, 0))
	assert.Equal(t, ModeBeatProcessor, p.BandMode(0, 2))
	assert.Equal(t, ModeMute, p.BandMode(0, 4))
	assert.Equal(t, ModeMute, p.BandMode(0, 6))
	assert.Equal(t, ModeOff, p.BandMode(0, 1))

	// Mute wins over solo.
	prm.Bands[2].Mute = true
	require.NoError(t, p.UpdateSettings())
	assert.Equal(t, ModeMute, p.BandMode(0, 2))
}

func TestSplitsAreSortedByFrequency(t *testing.T) {
	p := newTestProcessor(t, 1)
	prm := p.Params()
	onlySplits(prm, map[int]float64{0: 5000, 1: 200})
	require.NoError(t, p.UpdateSettings())

	assert.InDelta(t, 200.0, prm.Bands[0].FreqEnd, 0)
	assert.InDelta(t, 5000.0, prm.Bands[2].FreqEnd, 0)
	assert.InDelta(t, 24000.0, prm.Bands[1].FreqEnd, 0)
	assert.Equal(t, [MaxBands]int{0, 2, 1, -1, -1, -1, -1, -1}, p.channels[0].slots)

	// The band responses still sum to unity.
	freqs := []float64{50, 200, 1000, 5000, 15000}
	sum := make([]float64, len(freqs))
	resp := make([]float64, len(freqs))

	for k := range 3 {
		require.NoError(t, p.channels[0].xover.Response(k, resp, freqs))
		for i := range sum {
			sum[i] += resp[i]
		}
	}

	testutil.RequireSliceNearlyEqual(t, sum, []float64{1, 1, 1, 1, 1}, 1e-12)
}

func TestDryPathIsLatencyAligned(t *testing.T) {
	p := newTestProcessor(t, 1)
	p.Params().DryGain = 1
	p.Params().WetGain = 0
	require.NoError(t, p.UpdateSettings())

	in := testutil.DeterministicNoise(8, 0.5, 20000)
	out := render(p, [][]float64{in}, 700)[0]

	testutil.RequireDelayedNearlyEqual(t, out, in, p.Latency(), 0)
}

func TestBypassCrossfadesToDelayedInput(t *testing.T) {
	p := newTestProcessor(t, 1)
	p.Params().Bypass = true
	require.NoError(t, p.UpdateSettings())

	in := testutil.DeterministicNoise(6, 0.5, 30000)
	out := render(p, [][]float64{in}, 1024)[0]
	lag := p.Latency()

	fade := int(bypassTime*48000) + 1
	for i := fade; i < len(out); i++ {
		want := 0.0
		if i >= lag {
			want = in[i-lag]
		}
		require.InDelta(t, want, out[i], 1e-12, "sample %d", i)
	}

	// Bypass applied before the sample rate is set takes effect at once.
	require.NoError(t, p.SetSampleRate(48000))
	assert.InDelta(t, 1.0, p.channels[0].bypass.state, 0)
}

func TestParamsAreClamped(t *testing.T) {
	p := newTestProcessor(t, 1)
	prm := p.Params()
	prm.InGain = 100
	prm.Bands[0].LongRMS = 1e6
	prm.Bands[2].ShortRMS = -5
	prm.Bands[4].Gain = 1e3
	require.NoError(t, p.UpdateSettings())

	assert.InDelta(t, GlobalGainMax, p.inGain, 0)
	assert.Equal(t, core.MillisToSamples(48000, LongRMSMaxMs), p.channels[0].bands[0].long.Window())
	assert.Equal(t, core.MillisToSamples(48000, ShortRMSMinMs), p.channels[0].bands[2].short.Window())
	assert.InDelta(t, core.DBToLinear(BandGainMaxDB), p.channels[0].bands[4].gain, 1e-12)

	// The user values are left untouched.
	assert.InDelta(t, 1e6, prm.Bands[0].LongRMS, 0)
}

func TestMeshProtocol(t *testing.T) {
	p := newTestProcessor(t, 1)
	in := [][]float64{testutil.DeterministicNoise(1, 0.5, 2048)}

	for j := range MaxBands {
		assert.True(t, p.BandFreqMesh(j).IsEmpty())
	}

	render(p, in, 2048)

	fm := p.FreqMesh(0)
	require.False(t, fm.IsEmpty())
	assert.Equal(t, FreqMeshPoints, fm.Points())
	assert.InDelta(t, SpecFreqMin, fm.X()[0], 1e-9)
	assert.InDelta(t, SpecFreqMax, fm.X()[FreqMeshPoints-1], 1e-6)

	bm := p.BandFreqMesh(0)
	require.False(t, bm.IsEmpty())
	assert.Equal(t, FreqMeshPoints+2, bm.Points())
	assert.Zero(t, bm.Y()[0])
	assert.Zero(t, bm.Y()[bm.Points()-1])
	assert.InDelta(t, 1.0, bm.Y()[1], 1e-6)

	pf := p.PunchCurveMesh(2)
	require.False(t, pf.IsEmpty())
	assert.Equal(t, CurveMeshPoints, pf.Points())

	// A consumed band mesh is not refilled until something changes.
	bm.MarkEmpty()
	render(p, in, 2048)
	assert.True(t, bm.IsEmpty())

	p.UIActivated()
	render(p, in, 2048)
	assert.False(t, bm.IsEmpty())

	// A changed split marks every band response dirty.
	assert.Less(t, bm.Y()[1+FreqMeshPoints/2], 0.01)
	bm.MarkEmpty()
	p.Params().Splits[1].Frequency = 400
	require.NoError(t, p.UpdateSettings())
	render(p, in, 2048)
	require.False(t, bm.IsEmpty())
	assert.Greater(t, bm.Y()[1+FreqMeshPoints/2], 0.1)

	// The history mesh refills on every call once consumed.
	hm := p.PeakHistoryMesh(0, 2)
	require.False(t, hm.IsEmpty())
	hm.MarkEmpty()
	render(p, in, 2048)
	assert.False(t, hm.IsEmpty())
	assert.InDelta(t, TimeHistory, hm.X()[TimeMeshPoints-1], 1e-12)
}

func TestSecondChannelDoesNotPublishBandCurves(t *testing.T) {
	p := newTestProcessor(t, 2)

	for j := range MaxBands {
		assert.Zero(t, p.channels[1].bands[j].dirty, "band %d", j)
		assert.Equal(t, syncAll, p.channels[0].bands[j].dirty, "band %d", j)
	}
}

func TestResetClearsSignalState(t *testing.T) {
	in := [][]float64{testutil.ClickTrain(3000, 20000, 0.7)}

	p := newTestProcessor(t, 1)
	first := render(p, in, 1024)
	p.Reset()
	second := render(p, in, 1024)

	assert.Equal(t, first, second)
}

func BenchmarkProcessStereo(b *testing.B) {
	p := newTestProcessor(b, 2)
	in := [][]float64{
		testutil.DeterministicNoise(1, 0.5, 1024),
		testutil.DeterministicNoise(2, 0.5, 1024),
	}
	out := [][]float64{make([]float64, 1024), make([]float64, 1024)}

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		p.Process(out, in)
	}
}
