package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/esalab/esa/pkg/logging"
)

// Cepstrum holds a complex cepstrum: quefrency axis in seconds and the
// one-sided transform of the log-magnitude spectrum.
type Cepstrum struct {
	Quefrency []float64    `json:"quefrency"`
	Values    []complex128 `json:"-"`
}

// PowerCepstrum holds the power-domain cepstrum variant.
type PowerCepstrum struct {
	Quefrency []float64 `json:"quefrency"`
	Power     []float64 `json:"power"`
}

// ComplexCepstrum applies a length-matched Hamming window, computes the
// one-sided spectrum, takes log|X| per bin and transforms that log-magnitude
// sequence once more. The quefrency axis is derived from the bin spacing of
// the first transform. Bins where |X| is exactly zero produce -Inf in the
// log-magnitude sequence and propagate through the second transform.
func (a *Analyzer) ComplexCepstrum(signal []float64, fs float64) (*Cepstrum, error) {
	logX, quefrency, err := a.logSpectrum(signal, fs, false)
	if err != nil {
		return nil, fmt.Errorf("complex cepstrum: %w", err)
	}

	ceps := fft.FFTReal(logX)[:len(logX)/2+1]

	a.logger.Debug("computed complex cepstrum", logging.Fields{
		"signal_length":  len(signal),
		"quefrency_bins": len(quefrency),
	})

	return &Cepstrum{Quefrency: quefrency, Values: ceps}, nil
}

// PowerCepstrum is the power-domain analogue of ComplexCepstrum: the log is
// taken of the squared magnitude and the squared magnitude of the second
// transform is returned.
func (a *Analyzer) PowerCepstrum(signal []float64, fs float64) (*PowerCepstrum, error) {
	logP, quefrency, err := a.logSpectrum(signal, fs, true)
	if err != nil {
		return nil, fmt.Errorf("power cepstrum: %w", err)
	}

	ceps := fft.FFTReal(logP)[:len(logP)/2+1]
	power := make([]float64, len(ceps))
	for i, c := range ceps {
		mag := cmplx.Abs(c)
		power[i] = mag * mag
	}

	return &PowerCepstrum{Quefrency: quefrency, Power: power}, nil
}

// logSpectrum windows the signal, computes its one-sided spectrum and returns
// the per-bin log magnitude (or log power) along with the quefrency axis of
// the follow-up transform.
func (a *Analyzer) logSpectrum(signal []float64, fs float64, squared bool) ([]float64, []float64, error) {
	if len(signal) < 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrShortSignal, len(signal))
	}
	if fs <= 0 {
		return nil, nil, fmt.Errorf("%w: got %g", ErrBadSampleRate, fs)
	}

	w := window.Hamming(len(signal))
	windowed := make([]float64, len(signal))
	for i, v := range signal {
		windowed[i] = w[i] * v
	}

	coeffs := fft.FFTReal(windowed)[:len(signal)/2+1]
	logX := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag := cmplx.Abs(c)
		if squared {
			mag *= mag
		}
		logX[i] = math.Log(mag)
	}

	// The quefrency axis treats the log-magnitude sequence as sampled at
	// the bin spacing of the original spectrum.
	df := fs / float64(len(signal))
	return logX, rfftFreqs(len(logX), df), nil
}
