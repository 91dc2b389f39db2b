package buffer

import (
	"errors"
	"fmt"
)

// MaxArenaSize bounds the number of samples a single arena may hold.
const MaxArenaSize = 1 << 30

// ErrArenaExhausted is returned when a Take request exceeds the arena's
// remaining capacity.
var ErrArenaExhausted = errors.New("buffer: arena exhausted")

// Layout accumulates the total size of the slices an arena must provide.
type Layout struct {
	total int
	err   error
}

// Add reserves count slices of n samples each.
func (l *Layout) Add(n, count int) {
	if l.err != nil {
		return
	}
	if n < 0 || count < 0 {
		l.err = fmt.Errorf("buffer: negative layout request %d x %d", count, n)
		return
	}
	if n > 0 && count > (MaxArenaSize-l.total)/n {
		l.err = fmt.Errorf("buffer: layout exceeds %d samples", MaxArenaSize)
		return
	}
	l.total += n * count
}

// Total returns the accumulated size in samples.
func (l *Layout) Total() int { return l.total }

// Arena is a bump allocator over a single float64 slice.
type Arena struct {
	data []float64
	off  int
}

// NewArena allocates an arena large enough for the given layout.
func NewArena(l Layout) (*Arena, error) {
	if l.err != nil {
		return nil, l.err
	}
	return &Arena{data: make([]float64, l.total)}, nil
}

// Take carves the next n samples from the arena. The returned slice has its
// capacity clipped to n so appends can never spill into a neighbour.
func (a *Arena) Take(n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("buffer: negative take %d", n)
	}
	if a.off+n > len(a.data) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrArenaExhausted, n, len(a.data)-a.off)
	}
	s := a.data[a.off : a.off+n : a.off+n]
	a.off += n
	return s, nil
}

// MustTake is like Take but panics on exhaustion. It is meant for code that
// sized the arena from the same Layout it is carving.
func (a *Arena) MustTake(n int) []float64 {
	s, err := a.Take(n)
	if err != nil {
		panic(err)
	}
	return s
}

// Size returns the total arena size in samples.
func (a *Arena) Size() int { return len(a.data) }

// Used returns the number of samples already handed out.
func (a *Arena) Used() int { return a.off }

// Zero clears the whole backing store without releasing any slice.
func (a *Arena) Zero() {
	for i := range a.data {
		a.data[i] = 0
	}
}
