package breather

import "errors"

var (
	// ErrInvalidChannels is returned for channel counts other than 1 or 2.
	ErrInvalidChannels = errors.New("breather: channel count must be 1 or 2")
	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("breather: invalid sample rate")
	// ErrBlockSize is returned when the sub-block size is not a power of two.
	ErrBlockSize = errors.New("breather: invalid block size")
	// ErrInactive reports that the processor failed to initialise and
	// renders silence.
	ErrInactive = errors.New("breather: processor is inactive")
)
