package spline

import (
	"go.viam.com/splinefit/logging"
)

// Diagnostics observes a problem as it is built and fit. Implementations must not retain or
// mutate the values they are handed.
type Diagnostics interface {
	Constructed(dims Dimensions)
	ConstraintAdded(kind ConstraintKind, knot, derivative, rowsAdded, rows int)
	Fitted(report FitReport)
}

type noopDiagnostics struct{}

func (noopDiagnostics) Constructed(Dimensions) {}

func (noopDiagnostics) ConstraintAdded(ConstraintKind, int, int, int, int) {}

func (noopDiagnostics) Fitted(FitReport) {}

type loggerDiagnostics struct {
	logger logging.Logger
}

// NewLoggerDiagnostics returns Diagnostics that write debug lines to the given logger.
func NewLoggerDiagnostics(logger logging.Logger) Diagnostics {
	return &loggerDiagnostics{logger: logger}
}

func (ld *loggerDiagnostics) Constructed(dims Dimensions) {
	ld.logger.Debugw("spline problem constructed",
		"knots", dims.Knots,
		"segments", dims.Segments,
		"coefficients", dims.Coefficients,
		"outputs", dims.Outputs,
		"unknowns", dims.Unknowns,
	)
}

func (ld *loggerDiagnostics) ConstraintAdded(kind ConstraintKind, knot, derivative, rowsAdded, rows int) {
	ld.logger.Debugw("constraint added",
		"kind", kind,
		"knot", knot,
		"derivative", derivative,
		"rows_added", rowsAdded,
		"rows", rows,
	)
}

func (ld *loggerDiagnostics) Fitted(report FitReport) {
	ld.logger.Debugw("spline problem fit",
		"rows", report.Rows,
		"unknowns", report.Unknowns,
		"condition", report.Condition,
		"residual", report.Residual,
	)
}
