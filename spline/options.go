package spline

import (
	"go.viam.com/splinefit/logging"
)

// Option configures a Problem at construction.
type Option func(*Problem)

// WithDiagnostics installs a hook that observes construction, registration and fitting.
func WithDiagnostics(diagnostics Diagnostics) Option {
	return func(p *Problem) {
		if diagnostics != nil {
			p.diagnostics = diagnostics
		}
	}
}

// WithLogger is shorthand for WithDiagnostics(NewLoggerDiagnostics(logger)).
func WithLogger(logger logging.Logger) Option {
	return func(p *Problem) {
		if logger != nil {
			p.diagnostics = NewLoggerDiagnostics(logger)
		}
	}
}

// WithConditionLimit sets the largest condition number Fit accepts before reporting
// ErrSingularSystem. Defaults to mat.ConditionTolerance (1e16). The basis uses absolute time, so the
// condition number grows with the magnitude of the knot times: the same constraints over knots
// {0, 1, 3} fit comfortably, over {100, 101, 103} with a condition near 1e12 and over {1000, 1001, 1003}
// near 4e18, which the default rejects. Limits above the default also let through solutions that
// have lost most of their significant digits.
func WithConditionLimit(limit float64) Option {
	return func(p *Problem) {
		if limit > 0 {
			p.conditionLimit = limit
		}
	}
}
