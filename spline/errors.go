package spline

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned when caller supplied data violates a construction or
	// registration contract: unordered knot times, out of range indices, mismatched value sizes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternalInvariantViolation marks misuse of the problem's lifecycle, such as registering
	// more rows than unknowns or fitting an incomplete system.
	ErrInternalInvariantViolation = errors.New("internal invariant violation")

	// ErrUnderdetermined is returned by Fit when fewer rows than unknowns have been registered.
	ErrUnderdetermined = errors.WithMessage(ErrInternalInvariantViolation, "underdetermined system")

	// ErrOverdetermined is returned when the registered rows would exceed the number of unknowns.
	ErrOverdetermined = errors.WithMessage(ErrInternalInvariantViolation, "overdetermined system")

	// ErrNotFit is returned when the fitted curve is queried before Fit succeeded.
	ErrNotFit = errors.WithMessage(ErrInternalInvariantViolation, "problem has not been fit")

	// ErrAlreadyFit is returned when constraints are registered after Fit.
	ErrAlreadyFit = errors.WithMessage(ErrInternalInvariantViolation, "problem has already been fit")

	// ErrSingularSystem is returned by Fit when the constraint matrix is rank deficient or too
	// ill-conditioned to produce an exact solution.
	ErrSingularSystem = errors.New("singular system")
)

// NewKnotOutOfRangeError is used when a knot index is outside [0, numKnots).
func NewKnotOutOfRangeError(knot, numKnots int) error {
	return errors.Wrapf(ErrInvalidInput, "knot %d out of range [0, %d)", knot, numKnots)
}

// NewDerivativeOutOfRangeError is used when a derivative order is outside [0, numCoefficients).
func NewDerivativeOutOfRangeError(derivative, numCoefficients int) error {
	return errors.Wrapf(ErrInvalidInput, "derivative %d out of range [0, %d)", derivative, numCoefficients)
}

// NewOutputDimensionError is used when a constraint value does not have one entry per output.
func NewOutputDimensionError(got, expected int) error {
	return errors.Wrapf(ErrInvalidInput, "value has %d outputs but problem has %d", got, expected)
}

// NewBoundaryContinuityError is used when a continuity constraint targets the first or last knot.
func NewBoundaryContinuityError(knot, numKnots int) error {
	return errors.Wrapf(ErrInvalidInput, "continuity constraint at knot %d requires an interior knot in (0, %d)",
		knot, numKnots-1)
}

// NewRowBudgetError is used when adding rows would overflow the preallocated system.
func NewRowBudgetError(rows, adding, dimension int) error {
	return errors.Wrapf(ErrOverdetermined, "cannot add %d row(s): %d of %d rows already registered", adding, rows, dimension)
}
