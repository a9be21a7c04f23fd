package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/esalab/esa/pkg/logging"
)

// Input validation errors. Degenerate numeric results (log of zero,
// normalization by a zero peak) are NOT errors; they propagate as
// non-finite values and callers must check for them.
var (
	ErrShortSignal   = errors.New("signal must contain at least 2 samples")
	ErrBadSampleRate = errors.New("sampling frequency must be positive")
)

// Spectrum is a one-sided power spectrum: frequency bins in Hz (ascending,
// starting at DC) and the squared magnitude at each bin.
type Spectrum struct {
	Frequency []float64 `json:"frequency"`
	Power     []float64 `json:"power"`
}

// ComplexSpectrum is a one-sided complex spectrum preserving phase.
type ComplexSpectrum struct {
	Frequency    []float64    `json:"frequency"`
	Coefficients []complex128 `json:"-"`
}

// Analyzer provides the spectral primitives of the ESA pipeline
type Analyzer struct {
	logger logging.Logger
}

// NewAnalyzer creates a new spectral analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_analyzer",
		}),
	}
}

// PowerSpectrum removes the sample mean and computes the one-sided power
// spectrum of the signal. The frequency axis is k*fs/N for k = 0..N/2, so an
// even-length input yields N/2+1 bins spanning [0, fs/2].
func (a *Analyzer) PowerSpectrum(signal []float64, fs float64) (*Spectrum, error) {
	coeffs, freqs, err := a.rfft(signal, fs)
	if err != nil {
		return nil, fmt.Errorf("power spectrum: %w", err)
	}

	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag := cmplx.Abs(c)
		power[i] = mag * mag
	}

	return &Spectrum{Frequency: freqs, Power: power}, nil
}

// ComplexSpectrum removes the sample mean and computes the one-sided complex
// spectrum, preserving per-bin phase for techniques that need it.
func (a *Analyzer) ComplexSpectrum(signal []float64, fs float64) (*ComplexSpectrum, error) {
	coeffs, freqs, err := a.rfft(signal, fs)
	if err != nil {
		return nil, fmt.Errorf("complex spectrum: %w", err)
	}

	return &ComplexSpectrum{Frequency: freqs, Coefficients: coeffs}, nil
}

// rfft validates the input, removes the mean and returns the one-sided FFT
// together with its frequency axis.
func (a *Analyzer) rfft(signal []float64, fs float64) ([]complex128, []float64, error) {
	if len(signal) < 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrShortSignal, len(signal))
	}
	if fs <= 0 {
		return nil, nil, fmt.Errorf("%w: got %g", ErrBadSampleRate, fs)
	}

	mean := stat.Mean(signal, nil)
	centered := make([]float64, len(signal))
	for i, v := range signal {
		centered[i] = v - mean
	}

	// go-dsp handles non-power-of-2 lengths without falling back to a
	// quadratic DFT (Bluestein's algorithm).
	full := fft.FFTReal(centered)
	oneSided := full[:len(signal)/2+1]

	return oneSided, rfftFreqs(len(signal), 1/fs), nil
}

// Decibel converts magnitudes to 20*log10(m) decibels. With normalize set,
// every value is first divided by the peak so the maximum maps to 0 dB.
// Zero or negative inputs yield -Inf or NaN; those propagate untouched.
func (a *Analyzer) Decibel(values []float64, normalize bool) []float64 {
	if len(values) == 0 {
		return []float64{}
	}

	scale := 1.0
	if normalize {
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		scale = 1 / max
	}

	db := make([]float64, len(values))
	for i, v := range values {
		db[i] = 20 * math.Log10(v*scale)
	}
	return db
}

// RMS computes the mean-removed root-mean-square of the signal, i.e. the
// population standard deviation (divisor N). A constant signal yields 0.
func (a *Analyzer) RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(signal, nil))
}

// rfftFreqs returns the one-sided DFT sample frequencies for a transform of
// length n with sample spacing d: f[i] = i / (d*n) for i = 0..n/2.
func rfftFreqs(n int, d float64) []float64 {
	freqs := make([]float64, n/2+1)
	for i := range freqs {
		freqs[i] = float64(i) / (d * float64(n))
	}
	return freqs
}
