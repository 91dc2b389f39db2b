package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/simd/f64"

	"github.com/cwbudde/algo-breather/dsp/effects/breather"
)

const (
	monoChannels   = 1
	stereoChannels = 2

	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	wavFormatPCM = 1
)

// config holds the command line settings.
type config struct {
	splits      string
	listen      string
	threshold   float64
	ratio       float64
	maxGain     float64
	longRMS     float64
	shortRMS    float64
	dry         float64
	wet         float64
	stereoSplit bool
	blockSize   int
	verbose     bool
}

func defaultConfig() config {
	b := breather.DefaultBandParams()

	return config{
		splits:    defaultSplits,
		listen:    "beat",
		threshold: b.BPThreshold,
		ratio:     b.BPRatio,
		maxGain:   b.BPMaxGain,
		longRMS:   b.LongRMS,
		shortRMS:  b.ShortRMS,
		dry:       0,
		wet:       1,
		blockSize: 1024,
	}
}

type breatheStats struct {
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	latency    int
}

// parseSplits parses a comma separated list of split frequencies.
func parseSplits(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	fields := strings.Split(s, ",")
	if len(fields) > breather.MaxSplits {
		return nil, fmt.Errorf("at most %d splits, got %d", breather.MaxSplits, len(fields))
	}

	freqs := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid split frequency %q: %w", f, err)
		}
		if v < breather.FreqMin || v > breather.FreqMax {
			return nil, fmt.Errorf("split frequency %v out of range [%v, %v]", v, breather.FreqMin, breather.FreqMax)
		}
		freqs = append(freqs, v)
	}

	return freqs, nil
}

// newProcessor creates a processor for the input format and applies cfg.
func newProcessor(cfg config, channels, sampleRate int) (*breather.Processor, error) {
	splits, err := parseSplits(cfg.splits)
	if err != nil {
		return nil, err
	}

	listen, err := breather.ParseListen(cfg.listen)
	if err != nil {
		return nil, err
	}

	p, err := breather.New(channels,
		breather.WithSampleRate(float64(sampleRate)),
		breather.WithBlockSize(cfg.blockSize),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor: %w", err)
	}

	prm := p.Params()
	prm.DryGain = cfg.dry
	prm.WetGain = cfg.wet
	prm.StereoSplit = cfg.stereoSplit

	for i := range prm.Splits {
		prm.Splits[i].Enabled = i < len(splits)
		if i < len(splits) {
			prm.Splits[i].Frequency = splits[i]
		}
	}

	for j := range prm.Bands {
		b := &prm.Bands[j]
		b.Listen = listen
		b.LongRMS = cfg.longRMS
		b.ShortRMS = cfg.shortRMS
		b.BPThreshold = cfg.threshold
		b.BPRatio = cfg.ratio
		b.BPMaxGain = cfg.maxGain
	}

	if err := p.UpdateSettings(); err != nil {
		return nil, fmt.Errorf("failed to apply settings: %w", err)
	}

	return p, nil
}

// streamer runs blocks through a processor and drops the first latency
// frames of output, so the result is aligned with the input.
type streamer struct {
	p     *breather.Processor
	skip  int
	tail  int
	out   [][]float64
	views [][]float64
}

func newStreamer(p *breather.Processor, maxFrames int) *streamer {
	out := make([][]float64, p.Channels())
	for i := range out {
		out[i] = make([]float64, maxFrames)
	}

	return &streamer{
		p:     p,
		skip:  p.Latency(),
		tail:  p.Latency(),
		out:   out,
		views: make([][]float64, len(out)),
	}
}

// push processes in and passes the aligned output to emit. emit may be
// called with zero frames.
func (s *streamer) push(in [][]float64, emit func([][]float64) error) error {
	n := len(in[0])

	out := s.views[:len(in)]
	for i := range out {
		out[i] = s.out[i][:n]
	}

	s.p.Process(out, in)

	drop := min(s.skip, n)
	s.skip -= drop

	for i := range out {
		out[i] = out[i][drop:]
	}

	return emit(out)
}

// flush feeds silence until the output has caught up with the input.
func (s *streamer) flush(emit func([][]float64) error) error {
	silence := make([][]float64, s.p.Channels())
	size := len(s.out[0])

	for s.tail > 0 {
		n := min(s.tail, size)
		for i := range silence {
			silence[i] = make([]float64, n)
		}

		if err := s.push(silence, emit); err != nil {
			return err
		}

		s.tail -= n
	}

	return nil
}

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
	format   *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	if decoder.WavAudioFormat != wavFormatPCM {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported WAV format %d, only PCM is supported", decoder.WavAudioFormat)
	}

	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	if format.NumChannels != monoChannels && format.NumChannels != stereoChannels {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported channel count %d", format.NumChannels)
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
	}

	return &wavInputInfo{
		file:     inputFile,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
		format:   format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter converts float frames to PCM and encodes them.
type wavOutputWriter struct {
	file     *os.File
	encoder  *wav.Encoder
	buf      *audio.IntBuffer
	mix      []float64
	maxVal   float64
	channels int
	frames   int64
}

func createWAVOutput(path string, format *audio.Format, bitDepth int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:     outputFile,
		encoder:  wav.NewEncoder(outputFile, format.SampleRate, bitDepth, format.NumChannels, wavFormatPCM),
		buf:      &audio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
		maxVal:   getMaxValue(bitDepth),
		channels: format.NumChannels,
	}, nil
}

// write interleaves and encodes one block of channel data.
func (w *wavOutputWriter) write(channels [][]float64) error {
	n := len(channels[0])
	if n == 0 {
		return nil
	}

	total := n * w.channels
	if cap(w.mix) < total {
		w.mix = make([]float64, total)
		w.buf.Data = make([]int, total)
	}

	w.mix = w.mix[:total]
	interleave(w.mix, channels)
	w.buf.Data = w.buf.Data[:total]
	quantize(w.buf.Data, w.mix, w.maxVal)

	if err := w.encoder.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}

	w.frames += int64(n)

	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

func breatheWAV(inputPath, outputPath string, cfg config) (stats *breatheStats, err error) {
	input, err := openWAVInput(inputPath, cfg.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	p, err := newProcessor(cfg, input.channels, input.rate)
	if err != nil {
		return nil, err
	}

	if cfg.verbose {
		log.Printf("Crossover rank %d, latency %d samples", p.Rank(), p.Latency())
	}

	output, err := createWAVOutput(outputPath, input.format, input.bitDepth)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (WAV header update)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	intBuf := &audio.IntBuffer{
		Data:   make([]int, bufferSize*input.channels),
		Format: input.format,
	}

	in := make([][]float64, input.channels)
	for i := range in {
		in[i] = make([]float64, bufferSize)
	}

	s := newStreamer(p, bufferSize)
	invMaxVal := 1 / getMaxValue(input.bitDepth)

	for {
		n, err := input.decoder.PCMBuffer(intBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}

		frames := n / input.channels
		if frames == 0 {
			break
		}

		block := in[:input.channels]
		for i := range block {
			block[i] = in[i][:frames]
		}

		deinterleave(block, intBuf.Data[:frames*input.channels], invMaxVal)

		if err := s.push(block, output.write); err != nil {
			return nil, err
		}
	}

	if err := s.flush(output.write); err != nil {
		return nil, err
	}

	return &breatheStats{
		sampleRate: input.rate,
		channels:   input.channels,
		bitDepth:   input.bitDepth,
		frames:     output.frames,
		latency:    p.Latency(),
	}, nil
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleave splits interleaved PCM into per-channel buffers scaled to
// [-1, 1].
func deinterleave(dst [][]float64, data []int, invMaxVal float64) {
	channels := len(dst)
	for i := range dst[0] {
		for ch := range channels {
			dst[ch][i] = float64(data[i*channels+ch]) * invMaxVal
		}
	}
}

// interleave writes the channels into dst frame by frame.
func interleave(dst []float64, channels [][]float64) {
	if len(channels) == stereoChannels {
		f64.Interleave2(dst, channels[0], channels[1])
		return
	}

	copy(dst, channels[0])
}

// quantize converts samples in [-1, 1] to integers, clipping overs.
func quantize(dst []int, src []float64, maxVal float64) {
	for i, v := range src {
		dst[i] = int(min(max(v, -1), 1) * maxVal)
	}
}
