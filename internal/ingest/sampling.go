package ingest

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNotEnoughSamples indicates fewer than two timestamps were supplied.
var ErrNotEnoughSamples = errors.New("need at least 2 timestamps to infer a sampling rate")

// InferSampleRate derives the sampling frequency in Hz from a time axis given
// in milliseconds. The mean inter-sample interval defines the rate; the
// standard deviation of the intervals must stay below maxStdDev (ms) for the
// sampling to count as consistent. An inconsistent recording still gets a
// rate, but Fourier analysis on it is inaccurate.
func InferSampleRate(timeMs []float64, maxStdDev float64) (fs float64, consistent bool, err error) {
	if len(timeMs) < 2 {
		return 0, false, ErrNotEnoughSamples
	}

	diffs := make([]float64, len(timeMs)-1)
	for i := 1; i < len(timeMs); i++ {
		diffs[i-1] = timeMs[i] - timeMs[i-1]
	}

	meanMs := stat.Mean(diffs, nil)
	if meanMs <= 0 {
		return 0, false, fmt.Errorf("non-increasing time axis (mean interval %g ms)", meanMs)
	}

	consistent = true
	if len(diffs) > 1 {
		consistent = stat.StdDev(diffs, nil) < maxStdDev
	}

	// Round the interval to nanosecond precision before inverting so float
	// noise in the exported timestamps does not shift the rate.
	meanSec := math.Round(meanMs*1e9) / 1e9 / 1000
	return math.Round(1 / meanSec), consistent, nil
}
