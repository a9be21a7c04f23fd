package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq, fs, amplitude float64) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return signal
}

func TestPowerSpectrumBinLayout(t *testing.T) {
	a := NewAnalyzer()

	n := 256
	fs := 512.0
	spec, err := a.PowerSpectrum(sine(n, 32, fs, 1), fs)
	require.NoError(t, err)

	require.Len(t, spec.Frequency, n/2+1)
	require.Len(t, spec.Power, n/2+1)

	assert.Equal(t, 0.0, spec.Frequency[0])
	assert.InDelta(t, fs/2, spec.Frequency[len(spec.Frequency)-1], 1e-12)

	// Axis is ascending with spacing fs/N
	for i := 1; i < len(spec.Frequency); i++ {
		assert.InDelta(t, fs/float64(n), spec.Frequency[i]-spec.Frequency[i-1], 1e-12)
	}

	for i, p := range spec.Power {
		assert.GreaterOrEqual(t, p, 0.0, "power bin %d", i)
	}
}

func TestPowerSpectrumSinePeak(t *testing.T) {
	a := NewAnalyzer()

	n := 256
	fs := 256.0
	spec, err := a.PowerSpectrum(sine(n, 10, fs, 1), fs)
	require.NoError(t, err)

	// A unit sine landing exactly on bin 10 concentrates all energy there
	// with one-sided magnitude N/2.
	peak := 0
	for i, p := range spec.Power {
		if p > spec.Power[peak] {
			peak = i
		}
	}
	assert.Equal(t, 10, peak)
	assert.InDelta(t, 10.0, spec.Frequency[peak], 1e-12)
	assert.InDelta(t, math.Pow(float64(n)/2, 2), spec.Power[peak], 1e-4)
}

func TestPowerSpectrumRemovesDC(t *testing.T) {
	a := NewAnalyzer()

	signal := sine(128, 8, 128, 1)
	for i := range signal {
		signal[i] += 5 // heavy DC bias
	}

	spec, err := a.PowerSpectrum(signal, 128)
	require.NoError(t, err)
	assert.InDelta(t, 0, spec.Power[0], 1e-18)
}

func TestPowerSpectrumNonPowerOfTwo(t *testing.T) {
	a := NewAnalyzer()

	n := 300
	fs := 600.0
	spec, err := a.PowerSpectrum(sine(n, 30, fs, 1), fs)
	require.NoError(t, err)

	require.Len(t, spec.Frequency, n/2+1)
	assert.InDelta(t, fs/2, spec.Frequency[len(spec.Frequency)-1], 1e-12)

	// 30 Hz lands exactly on bin 15 at 2 Hz resolution
	peak := 0
	for i, p := range spec.Power {
		if p > spec.Power[peak] {
			peak = i
		}
	}
	assert.Equal(t, 15, peak)
}

func TestPowerSpectrumTwoSampleBoundary(t *testing.T) {
	a := NewAnalyzer()

	spec, err := a.PowerSpectrum([]float64{1, -1}, 100)
	require.NoError(t, err)

	require.Len(t, spec.Frequency, 2)
	assert.Equal(t, 0.0, spec.Frequency[0])
	assert.InDelta(t, 50.0, spec.Frequency[1], 1e-12)
}

func TestPowerSpectrumInputValidation(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.PowerSpectrum([]float64{1}, 100)
	assert.ErrorIs(t, err, ErrShortSignal)

	_, err = a.PowerSpectrum(nil, 100)
	assert.ErrorIs(t, err, ErrShortSignal)

	_, err = a.PowerSpectrum([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrBadSampleRate)

	_, err = a.PowerSpectrum([]float64{1, 2}, -50)
	assert.ErrorIs(t, err, ErrBadSampleRate)
}

func TestComplexSpectrumPreservesPhase(t *testing.T) {
	a := NewAnalyzer()

	n := 128
	fs := 128.0
	spec, err := a.ComplexSpectrum(sine(n, 4, fs, 1), fs)
	require.NoError(t, err)

	require.Len(t, spec.Coefficients, n/2+1)
	require.Len(t, spec.Frequency, n/2+1)

	// sin contributes -j*N/2 at its bin: almost pure imaginary part
	assert.InDelta(t, 0, real(spec.Coefficients[4]), 1e-6)
	assert.InDelta(t, -float64(n)/2, imag(spec.Coefficients[4]), 1e-6)
}

func TestDecibelNormalized(t *testing.T) {
	a := NewAnalyzer()

	db := a.Decibel([]float64{0.5, 2, 8}, true)
	require.Len(t, db, 3)

	max := db[0]
	for _, v := range db[1:] {
		if v > max {
			max = v
		}
	}
	assert.InDelta(t, 0, max, 1e-12)
	assert.InDelta(t, 20*math.Log10(0.5/8), db[0], 1e-12)
}

func TestDecibelDegenerateInputs(t *testing.T) {
	a := NewAnalyzer()

	db := a.Decibel([]float64{0, 1}, false)
	assert.True(t, math.IsInf(db[0], -1), "log of zero must yield -Inf")
	assert.InDelta(t, 0, db[1], 1e-12)

	db = a.Decibel([]float64{-1, 1}, false)
	assert.True(t, math.IsNaN(db[0]), "log of a negative value must yield NaN")

	assert.Empty(t, a.Decibel(nil, true))
}

func TestRMS(t *testing.T) {
	a := NewAnalyzer()

	// Mean removal cancels a constant signal entirely
	assert.Equal(t, 0.0, a.RMS([]float64{3, 3, 3, 3}))

	// A zero-mean unit sine has RMS 1/sqrt(2)
	assert.InDelta(t, 1/math.Sqrt2, a.RMS(sine(1024, 8, 1024, 1)), 1e-9)

	// Population divisor: {0, 2} has RMS 1, not sqrt(2)
	assert.InDelta(t, 1.0, a.RMS([]float64{0, 2}), 1e-12)

	assert.Equal(t, 0.0, a.RMS(nil))
}
