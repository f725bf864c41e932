package spline

import (
	"gonum.org/v1/gonum/mat"
)

// newDerivativeMatrix returns the numCoefficients x numCoefficients matrix whose entry (d, j) is the
// factor produced by differentiating t^j d times: j*(j-1)*...*(j-d+1), or zero when j < d.
func newDerivativeMatrix(numCoefficients int) *mat.Dense {
	m := mat.NewDense(numCoefficients, numCoefficients, nil)
	for j := 0; j < numCoefficients; j++ {
		m.Set(0, j, 1)
	}
	for d := 1; d < numCoefficients; d++ {
		for j := d; j < numCoefficients; j++ {
			m.Set(d, j, float64(j-d+1)*m.At(d-1, j))
		}
	}
	return m
}

// basisVector writes into dst the row that evaluates the derivative-th derivative of a polynomial
// with monomial coefficients at absolute time t. dst must have one entry per coefficient.
func basisVector(dst []float64, derivatives *mat.Dense, t float64, derivative int) []float64 {
	for j := 0; j < derivative && j < len(dst); j++ {
		dst[j] = 0
	}
	pow := 1.0
	for j := derivative; j < len(dst); j++ {
		dst[j] = derivatives.At(derivative, j) * pow
		pow *= t
	}
	return dst
}
