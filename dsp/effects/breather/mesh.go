package breather

import (
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-breather/dsp/core"
)

// Display resolutions.
const (
	FreqMeshPoints  = 640
	CurveMeshPoints = 256
	TimeMeshPoints  = 320

	// TimeHistory is the span of the peak detector history in seconds.
	TimeHistory = 2.0

	// Frequency axis of transfer function meshes.
	SpecFreqMin = 10.0
	SpecFreqMax = 24000.0

	// Level axes of the gate curves, in dB.
	PFCurveMinDB = -36.0
	PFCurveMaxDB = 24.0
	BPCurveMinDB = -72.0
	BPCurveMaxDB = 24.0
)

// Mesh is a two-column display buffer handed between the processor and a
// single consumer.
//
// The processor writes only when the mesh is empty and marks it full. The
// consumer reads X and Y, then calls MarkEmpty to request new data.
type Mesh struct {
	x     []float64
	y     []float64
	empty bool
}

func newMesh(points int) *Mesh {
	return &Mesh{
		x:     make([]float64, points),
		y:     make([]float64, points),
		empty: true,
	}
}

// IsEmpty reports whether the processor may write new data.
func (m *Mesh) IsEmpty() bool { return m.empty }

// MarkEmpty releases the current data back to the processor.
func (m *Mesh) MarkEmpty() { m.empty = true }

// Points returns the number of points.
func (m *Mesh) Points() int { return len(m.x) }

// X returns the x column. The slice is owned by the mesh.
func (m *Mesh) X() []float64 { return m.x }

// Y returns the y column. The slice is owned by the mesh.
func (m *Mesh) Y() []float64 { return m.y }

// commit marks freshly written data as ready for the consumer.
func (m *Mesh) commit() { m.empty = false }

// axes holds the x coordinates shared by all meshes of one kind.
type axes struct {
	freq []float64 // FreqMeshPoints, Hz
	pf   []float64 // CurveMeshPoints, linear
	bp   []float64 // CurveMeshPoints, linear
	time []float64 // TimeMeshPoints, seconds
}

func newAxes() axes {
	return axes{
		freq: floats.LogSpan(make([]float64, FreqMeshPoints), SpecFreqMin, SpecFreqMax),
		pf: floats.LogSpan(make([]float64, CurveMeshPoints),
			core.DBToLinear(PFCurveMinDB), core.DBToLinear(PFCurveMaxDB)),
		bp: floats.LogSpan(make([]float64, CurveMeshPoints),
			core.DBToLinear(BPCurveMinDB), core.DBToLinear(BPCurveMaxDB)),
		time: floats.Span(make([]float64, TimeMeshPoints), 0, TimeHistory),
	}
}

// publish copies both columns into an empty mesh.
func publish(m *Mesh, freqs, chart []float64) bool {
	if !m.empty {
		return false
	}

	copy(m.x, freqs)
	copy(m.y, chart)
	m.commit()

	return true
}

// publishBandFreq writes a band response with an extra zero-gain point at
// each end, so a filled plot closes at the axis.
func publishBandFreq(m *Mesh, freqs, chart []float64) bool {
	if !m.empty {
		return false
	}

	last := len(m.x) - 1
	m.x[0], m.y[0] = SpecFreqMin*0.5, 0
	m.x[last], m.y[last] = SpecFreqMax*2, 0
	copy(m.x[1:last], freqs)
	copy(m.y[1:last], chart)
	m.commit()

	return true
}
