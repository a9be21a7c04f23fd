package analysis

import (
	"time"

	"github.com/esalab/esa/pkg/esa/spectral"
)

// Technique names accepted by the engine
const (
	TechniqueMCSA          = "mcsa"
	TechniqueCSA           = "csa"
	TechniqueVSA           = "vsa"
	TechniqueEPVA          = "epva"
	TechniqueIPSA          = "ipsa"
	TechniqueRMS           = "rms"
	TechniqueCepstrum      = "cepstrum"
	TechniquePowerCepstrum = "power-cepstrum"
	TechniqueCorrelation   = "correlation"
	TechniqueUnbalance     = "unbalance"
)

// TechniqueResult is the outcome of running one technique against one
// recording. Exactly one of Spectrum, Cepstrum or Scalar is populated on
// success.
type TechniqueResult struct {
	Technique string                  `json:"technique"`
	Channels  []string                `json:"channels"`
	Spectrum  *spectral.Spectrum      `json:"spectrum,omitempty"`
	Cepstrum  *spectral.PowerCepstrum `json:"cepstrum,omitempty"`
	Scalar    *float64                `json:"scalar,omitempty"`
	Duration  time.Duration           `json:"duration"`
	Error     error                   `json:"-"`
	ErrorMsg  string                  `json:"error,omitempty"`
}

// RecordingResult aggregates all technique results for one recording
type RecordingResult struct {
	Recording          string             `json:"recording"`
	SampleRate         float64            `json:"sample_rate"`
	Samples            int                `json:"samples"`
	ConsistentSampling bool               `json:"consistent_sampling"`
	Results            []*TechniqueResult `json:"results"`
	Succeeded          int                `json:"succeeded"`
	Failed             int                `json:"failed"`
	TotalDuration      time.Duration      `json:"total_duration"`
}

// ChannelStats summarizes one channel of a recording
type ChannelStats struct {
	Channel string  `json:"channel"`
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	RMS     float64 `json:"rms"`
}
