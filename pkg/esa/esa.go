// Package esa provides named Electrical Signature Analysis techniques for
// diagnosing induction and synchronous motors from current and voltage
// waveforms. Each technique is a fixed composition of the spectral primitives
// in pkg/esa/spectral and the frame transforms in pkg/esa/frame.
package esa

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/stat"

	"github.com/esalab/esa/pkg/esa/spectral"
	"github.com/esalab/esa/pkg/logging"
)

// ErrLengthMismatch indicates two sequences that must be parallel differ in length.
var ErrLengthMismatch = errors.New("sequences must have equal length")

// Analyzer composes the spectral engine into the named diagnostic techniques.
// It owns no state beyond its logger; every call is an independent pure
// transform and calls may run concurrently.
type Analyzer struct {
	spectral *spectral.Analyzer
	logger   logging.Logger
}

// NewAnalyzer creates a diagnostics analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		spectral: spectral.NewAnalyzer(),
		logger: logging.WithFields(logging.Fields{
			"component": "esa_analyzer",
		}),
	}
}

// Spectral exposes the underlying spectral engine for callers that need the
// primitives directly.
func (a *Analyzer) Spectral() *spectral.Analyzer {
	return a.spectral
}

// CSA runs Current Signature Analysis: the power spectrum of a phase current.
func (a *Analyzer) CSA(signal []float64, fs float64) (*spectral.Spectrum, error) {
	return a.spectral.PowerSpectrum(signal, fs)
}

// VSA runs Voltage Signature Analysis: the power spectrum of a phase voltage.
func (a *Analyzer) VSA(signal []float64, fs float64) (*spectral.Spectrum, error) {
	return a.spectral.PowerSpectrum(signal, fs)
}

// MCSA runs Motor Current Signature Analysis. Identical computation to CSA;
// the name reflects the diagnostic context.
func (a *Analyzer) MCSA(signal []float64, fs float64) (*spectral.Spectrum, error) {
	return a.CSA(signal, fs)
}

// EPVA runs the Enhanced Park's Vector Approach: the power spectrum of the
// complex envelope sqrt(|id + j*iq|). The d and q components must come from
// one of the frame transforms; the square root is taken of the magnitude, so
// its argument is never negative.
func (a *Analyzer) EPVA(id, iq []float64, fs float64) (*spectral.Spectrum, error) {
	if len(id) != len(iq) {
		return nil, fmt.Errorf("epva: %w: %d/%d", ErrLengthMismatch, len(id), len(iq))
	}

	envelope := make([]float64, len(id))
	for i := range id {
		envelope[i] = math.Sqrt(cmplx.Abs(complex(id[i], iq[i])))
	}

	return a.spectral.PowerSpectrum(envelope, fs)
}

// IPSA runs Instantaneous Power Signature Analysis: the power spectrum of
// p = vll * (il - mean(il)). With norm set, the power values are converted to
// peak-normalized decibels (maximum bin at 0 dB); bins with zero power then
// map to -Inf.
func (a *Analyzer) IPSA(vll, il []float64, fs float64, norm bool) (*spectral.Spectrum, error) {
	if len(vll) != len(il) {
		return nil, fmt.Errorf("ipsa: %w: %d/%d", ErrLengthMismatch, len(vll), len(il))
	}

	ilMean := stat.Mean(il, nil)
	p := make([]float64, len(vll))
	for i := range vll {
		p[i] = vll[i] * (il[i] - ilMean)
	}

	spec, err := a.spectral.PowerSpectrum(p, fs)
	if err != nil {
		return nil, fmt.Errorf("ipsa: %w", err)
	}

	if norm {
		spec.Power = a.spectral.Decibel(spec.Power, true)
	}
	return spec, nil
}

// Correlation returns the absolute Pearson correlation coefficient between
// two equal-length sequences, in [0, 1].
func (a *Analyzer) Correlation(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("correlation: %w: %d/%d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return 0, fmt.Errorf("correlation: sequences must not be empty")
	}
	return math.Abs(stat.Correlation(x, y, nil)), nil
}

// ApplyCalibration maps each sample through the affine calibration
// y = gain*x + offset. Gain and offset come from the probe calibration sheet
// and are reused across signals.
func (a *Analyzer) ApplyCalibration(signal []float64, gain, offset float64) []float64 {
	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = gain*v + offset
	}
	return out
}
