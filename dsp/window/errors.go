package window

import (
	"errors"
	"fmt"
)

// overlapTolerance is the relative ripple accepted by OverlapGain.
const overlapTolerance = 1e-9

var (
	errEmptyCoeffs        = errors.New("window coefficients must not be empty")
	errNotConstantOverlap = errors.New("window does not overlap-add to a constant")
)

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}

func validateHop(size, hop int) error {
	return fmt.Errorf("hop must divide the window size: size %d, hop %d", size, hop)
}
