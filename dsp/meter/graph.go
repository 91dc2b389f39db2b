// Package meter provides decimated time-history meters for display.
package meter

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Graph records a decimated max-hold history of a signal.
//
// Every Period samples the maximum seen during that period is pushed as one
// point. The Graph keeps the most recent Points points.
type Graph struct {
	points  []float64
	head    int // next slot to write
	period  int
	counter int
	peak    float64
}

// NewGraph creates a graph that keeps points history entries.
func NewGraph(points int) (*Graph, error) {
	if points < 1 {
		return nil, fmt.Errorf("meter: graph needs at least one point, got %d", points)
	}

	return &Graph{points: make([]float64, points), period: 1}, nil
}

// Points returns the history length.
func (g *Graph) Points() int { return len(g.points) }

// Period returns the number of samples folded into each point.
func (g *Graph) Period() int { return g.period }

// SetPeriod sets the number of samples per point, at least 1. The partial
// period in progress is kept.
func (g *Graph) SetPeriod(samples int) {
	g.period = max(samples, 1)
	if g.counter >= g.period {
		g.counter = g.period - 1
	}
}

// Process folds values into the history.
func (g *Graph) Process(values []float64) {
	for len(values) > 0 {
		n := min(g.period-g.counter, len(values))

		if m := floats.Max(values[:n]); g.counter == 0 || m > g.peak {
			g.peak = m
		}

		g.counter += n
		values = values[n:]

		if g.counter >= g.period {
			g.points[g.head] = g.peak
			g.head++
			if g.head >= len(g.points) {
				g.head = 0
			}
			g.counter = 0
		}
	}
}

// Read copies the history into dst, newest point first. dst shorter than
// Points receives the most recent len(dst) points.
func (g *Graph) Read(dst []float64) {
	size := len(g.points)
	j := g.head

	for i := 0; i < len(dst) && i < size; i++ {
		j--
		if j < 0 {
			j = size - 1
		}
		dst[i] = g.points[j]
	}
}

// Clear erases the history and the period in progress.
func (g *Graph) Clear() {
	clear(g.points)
	g.head = 0
	g.counter = 0
	g.peak = 0
}
