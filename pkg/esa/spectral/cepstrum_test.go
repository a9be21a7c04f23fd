package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplexCepstrumAxes(t *testing.T) {
	a := NewAnalyzer()

	n := 256
	fs := 1000.0
	ceps, err := a.ComplexCepstrum(sine(n, 50, fs, 1), fs)
	require.NoError(t, err)

	// First transform yields n/2+1 log-magnitude bins; the cepstrum is their
	// one-sided transform.
	logBins := n/2 + 1
	require.Len(t, ceps.Values, logBins/2+1)
	require.Len(t, ceps.Quefrency, logBins/2+1)

	assert.Equal(t, 0.0, ceps.Quefrency[0])

	// Quefrency spacing is 1/(df*M) with df the bin spacing of the original
	// spectrum and M the log-magnitude length.
	df := fs / float64(n)
	expected := 1 / (df * float64(logBins))
	assert.InDelta(t, expected, ceps.Quefrency[1], 1e-12)

	for i := 1; i < len(ceps.Quefrency); i++ {
		assert.Greater(t, ceps.Quefrency[i], ceps.Quefrency[i-1])
	}
}

func TestComplexCepstrumDetectsHarmonicSpacing(t *testing.T) {
	a := NewAnalyzer()

	// A signal with harmonics at multiples of f0 has a log-spectrum that is
	// periodic in frequency with period f0; the cepstrum concentrates that
	// periodicity near quefrency 1/f0.
	n := 2048
	fs := 2048.0
	f0 := 64.0
	signal := make([]float64, n)
	for i := range signal {
		ti := float64(i) / fs
		for h := 1.0; h <= 8; h++ {
			signal[i] += math.Sin(2*math.Pi*f0*h*ti) / h
		}
	}

	ceps, err := a.ComplexCepstrum(signal, fs)
	require.NoError(t, err)

	// Search past the low-quefrency envelope region; the first rahmonic at
	// 1/f0 must dominate from there on.
	start := 0
	for start < len(ceps.Quefrency) && ceps.Quefrency[start] < 0.5/f0 {
		start++
	}
	require.Less(t, start, len(ceps.Values))

	peak := start
	for i := start + 1; i < len(ceps.Values); i++ {
		if mag(ceps.Values[i]) > mag(ceps.Values[peak]) {
			peak = i
		}
	}

	assert.InDelta(t, 1/f0, ceps.Quefrency[peak], ceps.Quefrency[1]*2)
}

func mag(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func TestPowerCepstrumReturnsValues(t *testing.T) {
	a := NewAnalyzer()

	n := 512
	fs := 1000.0
	ceps, err := a.PowerCepstrum(sine(n, 50, fs, 1), fs)
	require.NoError(t, err)
	require.NotNil(t, ceps)

	logBins := n/2 + 1
	require.Len(t, ceps.Power, logBins/2+1)
	require.Len(t, ceps.Quefrency, logBins/2+1)

	for i, p := range ceps.Power {
		if !math.IsInf(p, 0) && !math.IsNaN(p) {
			assert.GreaterOrEqual(t, p, 0.0, "power bin %d", i)
		}
	}
}

func TestCepstrumQuefrencyMatchesBetweenVariants(t *testing.T) {
	a := NewAnalyzer()

	signal := sine(300, 25, 600, 1)

	complexCeps, err := a.ComplexCepstrum(signal, 600)
	require.NoError(t, err)
	powerCeps, err := a.PowerCepstrum(signal, 600)
	require.NoError(t, err)

	require.Equal(t, len(complexCeps.Quefrency), len(powerCeps.Quefrency))
	for i := range complexCeps.Quefrency {
		assert.InDelta(t, complexCeps.Quefrency[i], powerCeps.Quefrency[i], 1e-12)
	}
}

func TestCepstrumInputValidation(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.ComplexCepstrum([]float64{1}, 100)
	assert.ErrorIs(t, err, ErrShortSignal)

	_, err = a.ComplexCepstrum([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrBadSampleRate)

	_, err = a.PowerCepstrum(nil, 100)
	assert.ErrorIs(t, err, ErrShortSignal)

	_, err = a.PowerCepstrum([]float64{1, 2}, -1)
	assert.ErrorIs(t, err, ErrBadSampleRate)
}
