package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-breather/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d\n", cfg.SampleRate, cfg.BlockSize)

	// Output:
	// sampleRate=44100 blockSize=256
}

func ExampleMillisToSamples() {
	fmt.Println(core.MillisToSamples(48000, 400))

	// Output:
	// 19200
}
