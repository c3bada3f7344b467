// Package cheby evaluates two dimensional Chebyshev series in the column
// ordering used by cure distortion solutions.
package cheby

import (
	"errors"
	"fmt"
)

// NumCoeffs is the number of columns of the 2D, 7th order design matrix and
// the expected length of a cure distortion coefficient vector.
const NumCoeffs = 36

// Errors returned by the evaluation functions.
var (
	ErrLengthMismatch = errors.New("x and y must have the same length")
	ErrBadCoeffs      = errors.New("coefficient vector must have 36 elements")
)

// Vander returns the Chebyshev Vandermonde matrix of xs up to degree deg:
// len(xs) rows, deg+1 columns holding T0(x)..Tdeg(x). Uses the recurrence
// T0 = 1, T1 = x, Tn = 2x*Tn-1 - Tn-2.
func Vander(xs []float64, deg int) [][]float64 {
	if deg < 0 {
		panic(fmt.Sprintf("cheby: negative degree %d", deg))
	}

	m := make([][]float64, len(xs))
	for i, x := range xs {
		row := make([]float64, deg+1)
		row[0] = 1
		if deg >= 1 {
			row[1] = x
		}
		for n := 2; n <= deg; n++ {
			row[n] = 2*x*row[n-1] - row[n-2]
		}
		m[i] = row
	}
	return m
}

// Matrix2D7 returns the design matrix of the 2D, 7th order Chebyshev series
// at the points (xs[i], ys[i]): len(xs) rows and 36 columns, ordered as
// needed for use with cure distortion solutions.
func Matrix2D7(xs, ys []float64) ([][]float64, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}

	tx := Vander(xs, 7)
	ty := Vander(ys, 7)

	m := make([][]float64, len(xs))
	for i := range xs {
		x, y := tx[i], ty[i]
		m[i] = []float64{
			x[7], x[6], x[5], x[4], x[3], x[2], x[1],
			y[7], y[6], y[5], y[4], y[3], y[2], y[1],
			x[6] * y[1], x[1] * y[6], x[5] * y[2], x[2] * y[5],
			x[4] * y[3], x[3] * y[4], x[5] * y[1], x[1] * y[5],
			x[4] * y[2], x[2] * y[4], x[3] * y[3], x[4] * y[1],
			x[1] * y[4], x[3] * y[2], x[2] * y[3], x[3] * y[1],
			x[1] * y[3], x[2] * y[2], x[2] * y[1], x[1] * y[2],
			x[1] * y[1], x[0],
		}
	}
	return m, nil
}

// Interp2D7 evaluates the 2D, 7th order Chebyshev series with coefficients
// coeffs at the points (xs[i], ys[i]). The coefficients must be ordered
// according to cure distortion output.
func Interp2D7(xs, ys, coeffs []float64) ([]float64, error) {
	if len(coeffs) != NumCoeffs {
		return nil, ErrBadCoeffs
	}

	m, err := Matrix2D7(xs, ys)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(m))
	for i, row := range m {
		var sum float64
		for j, v := range row {
			sum += v * coeffs[j]
		}
		out[i] = sum
	}
	return out, nil
}
