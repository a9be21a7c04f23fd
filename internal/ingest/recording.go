package ingest

import (
	"math"
)

// Recording holds one oscilloscope export: a time axis in milliseconds and
// the parallel per-channel sample sequences. All channels share the time
// axis and therefore the sampling rate.
type Recording struct {
	Name               string               `json:"name"`
	TimeMs             []float64            `json:"-"`
	Channels           map[string][]float64 `json:"-"`
	ChannelOrder       []string             `json:"channels"`
	SampleRate         float64              `json:"sample_rate"`
	ConsistentSampling bool                 `json:"consistent_sampling"`
	TriggerOffsetMs    float64              `json:"trigger_offset_ms"`
}

// Samples returns the sample count of the recording
func (r *Recording) Samples() int {
	return len(r.TimeMs)
}

// Channel returns the named channel, or nil if it does not exist
func (r *Recording) Channel(name string) []float64 {
	return r.Channels[name]
}

// Slice returns a copy of the recording restricted to [startMs, endMs).
// Negative startMs and an endMs past the recording clamp to the available
// range.
func (r *Recording) Slice(startMs, endMs float64) *Recording {
	start := int(math.Round(startMs / 1000 * r.SampleRate))
	end := int(math.Round(endMs / 1000 * r.SampleRate))

	if start < 0 {
		start = 0
	}
	if end > r.Samples() {
		end = r.Samples()
	}
	if start > end {
		start = end
	}

	channels := make(map[string][]float64, len(r.Channels))
	for name, samples := range r.Channels {
		sliced := make([]float64, end-start)
		copy(sliced, samples[start:end])
		channels[name] = sliced
	}

	timeMs := make([]float64, end-start)
	copy(timeMs, r.TimeMs[start:end])

	return &Recording{
		Name:               r.Name,
		TimeMs:             timeMs,
		Channels:           channels,
		ChannelOrder:       append([]string(nil), r.ChannelOrder...),
		SampleRate:         r.SampleRate,
		ConsistentSampling: r.ConsistentSampling,
		TriggerOffsetMs:    r.TriggerOffsetMs,
	}
}
