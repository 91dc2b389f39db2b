package breather

// BandMeters are the per-band level readings of the last Process call.
type BandMeters struct {
	InLevel  float64 // peak of the band signal entering the band path
	OutLevel float64 // peak of the mixed band output, including gain

	PeakLevel float64 // peak of the transient ratio

	PunchEnvelope float64 // punch gate envelope at the loudest gated sample
	PunchCurve    float64 // gated ratio at that sample
	PunchGain     float64 // smallest punch gate gain

	BeatEnvelope float64 // beat gate envelope at the largest gain
	BeatCurve    float64 // envelope times gain at that sample
	BeatGain     float64 // largest beat gain including makeup
}

// ChannelMeters are the per-channel level readings of the last Process call.
type ChannelMeters struct {
	InLevel  float64
	OutLevel float64
}

func (m *BandMeters) reset() {
	*m = BandMeters{PunchGain: 1}
}
