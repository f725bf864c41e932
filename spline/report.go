package spline

import (
	"gonum.org/v1/gonum/mat"
)

// FitReport describes the numerical quality of a fit.
type FitReport struct {
	Rows     int
	Unknowns int
	// Condition is the condition number estimate of the constraint matrix.
	Condition float64
	// Residual is the Frobenius norm of A*X - B. Zero for problems with no outputs.
	Residual float64
}

// Report returns the report produced by the most recent successful Fit.
func (p *Problem) Report() (FitReport, error) {
	if p.state != Fit {
		return FitReport{}, ErrNotFit
	}
	return p.report, nil
}

func residualNorm(a, x, b mat.Matrix) float64 {
	var r mat.Dense
	r.Mul(a, x)
	r.Sub(&r, b)
	return mat.Norm(&r, 2)
}
