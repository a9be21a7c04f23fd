// Package frame implements three-phase to rotating/stationary reference frame
// projections (Park's transform family).
//
// Three incompatible scaling conventions coexist deliberately: the
// fixed-coefficient DQ projection, the power-invariant rotating DQ0 transform
// (scale sqrt(2/3)) and the amplitude-invariant stationary variant (scale
// 2/3). Each diagnostic technique states which convention it expects; they
// must never be interchanged silently.
package frame

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrPhaseLengthMismatch indicates the three phase sequences differ in length.
	ErrPhaseLengthMismatch = errors.New("phase sequences must have equal length")
	// ErrEmptyPhases indicates empty input sequences.
	ErrEmptyPhases = errors.New("phase sequences must not be empty")
)

// DQ projects three phase currents onto two fixed axes using the constant
// coefficients sqrt(2/3), 1/sqrt(6) and 1/sqrt(2). No rotation angle is
// involved and no mean removal is performed; centering the input is the
// caller's responsibility.
func DQ(ia, ib, ic []float64) (id, iq []float64, err error) {
	if err := checkPhases(ia, ib, ic); err != nil {
		return nil, nil, fmt.Errorf("dq: %w", err)
	}

	v1 := math.Sqrt(2.0 / 3.0)
	v2 := 1 / math.Sqrt(6)
	v4 := 1 / math.Sqrt(2)

	id = make([]float64, len(ia))
	iq = make([]float64, len(ia))
	for i := range ia {
		id[i] = v1*ia[i] - v2*ib[i] - v2*ic[i]
		iq[i] = v4*ib[i] - v4*ic[i]
	}
	return id, iq, nil
}

// DQ0 removes the per-phase mean from each input and applies the rotating
// Park transform at angle theta (radians), scaled by sqrt(2/3)
// (power-invariant). theta = 0 aligns the d-axis with phase A. For balanced
// three-phase input the zero-sequence component i0 is approximately zero.
func DQ0(ia, ib, ic []float64, theta float64) (id, iq, i0 []float64, err error) {
	if err := checkPhases(ia, ib, ic); err != nil {
		return nil, nil, nil, fmt.Errorf("dq0: %w", err)
	}

	n := len(ia)
	current := mat.NewDense(3, n, nil)
	current.SetRow(0, demean(ia))
	current.SetRow(1, demean(ib))
	current.SetRow(2, demean(ic))

	s := math.Sqrt(2.0 / 3.0)
	d := mat.NewDense(3, 3, []float64{
		s * math.Cos(theta), s * math.Cos(theta-2*math.Pi/3), s * math.Cos(theta-4*math.Pi/3),
		-s * math.Sin(theta), -s * math.Sin(theta-2*math.Pi/3), -s * math.Sin(theta-4*math.Pi/3),
		s / 2, s / 2, s / 2,
	})

	var out mat.Dense
	out.Mul(d, current)

	return out.RawRowView(0), out.RawRowView(1), out.RawRowView(2), nil
}

// DQAmplitudeInvariant applies the stationary amplitude-invariant variant of
// the transform at angle phi: [id; iq] = 2/3 * M(phi) * [iu; iv; iw]. No mean
// removal and no zero-sequence row.
func DQAmplitudeInvariant(iu, iv, iw []float64, phi float64) (id, iq []float64, err error) {
	if err := checkPhases(iu, iv, iw); err != nil {
		return nil, nil, fmt.Errorf("dq amplitude-invariant: %w", err)
	}

	n := len(iu)
	current := mat.NewDense(3, n, nil)
	current.SetRow(0, iu)
	current.SetRow(1, iv)
	current.SetRow(2, iw)

	trafo := mat.NewDense(2, 3, []float64{
		math.Cos(phi), math.Cos(phi - 2.0/3.0*math.Pi), math.Cos(phi - 4.0/3.0*math.Pi),
		-math.Sin(phi), -math.Sin(phi - 2.0/3.0*math.Pi), -math.Sin(phi - 4.0/3.0*math.Pi),
	})

	var out mat.Dense
	out.Mul(trafo, current)
	out.Scale(2.0/3.0, &out)

	return out.RawRowView(0), out.RawRowView(1), nil
}

func checkPhases(a, b, c []float64) error {
	if len(a) == 0 {
		return ErrEmptyPhases
	}
	if len(a) != len(b) || len(a) != len(c) {
		return fmt.Errorf("%w: %d/%d/%d", ErrPhaseLengthMismatch, len(a), len(b), len(c))
	}
	return nil
}

func demean(x []float64) []float64 {
	mean := stat.Mean(x, nil)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}
