// Package spline fits piecewise polynomial trajectories to per-knot value, derivative and
// continuity constraints with a single linear solve, and evaluates the fitted curve.
//
// A Problem is built over an ordered set of knot times. Callers register exactly as many
// constraint rows as the problem has unknowns (segments * coefficients), call Fit once, and then
// query Interpolate at arbitrary times. Polynomials are expressed in absolute time, not relative
// to the start of their segment, so the constraint matrix holds powers of the knot times. Knots far
// from zero (t in the thousands with cubic or higher segments) push its condition number past the
// default limit and Fit reports ErrSingularSystem; shift the times toward zero or raise the limit
// with WithConditionLimit.
package spline

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// State is the lifecycle stage of a Problem.
type State int

const (
	// Building accepts constraint registrations.
	Building State = iota
	// Fit accepts queries. There is no transition back to Building.
	Fit
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Fit:
		return "fit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ConstraintKind names the two kinds of constraint rows.
type ConstraintKind string

const (
	// ConstantConstraint pins a derivative of the curve to a value at a knot.
	ConstantConstraint ConstraintKind = "constant"
	// ContinuityConstraint equates a derivative of the two segments meeting at an interior knot.
	ContinuityConstraint ConstraintKind = "continuity"
)

// Dimensions summarizes the shape of a problem.
type Dimensions struct {
	Knots        int
	Segments     int
	Coefficients int
	Outputs      int
	Unknowns     int
}

// Segment is the fitted polynomial between two consecutive knots. Coefficients has one row per
// output and one column per monomial power, and is nil for problems with no outputs.
type Segment struct {
	Start        float64
	End          float64
	Coefficients *mat.Dense
}

func (s Segment) clone() Segment {
	out := Segment{Start: s.Start, End: s.End}
	if s.Coefficients != nil {
		out.Coefficients = mat.DenseCopyOf(s.Coefficients)
	}
	return out
}

// Problem is a piecewise polynomial fitting problem. Construction and constraint registration
// must not run concurrently. Once Fit has succeeded the problem is read-only and its query
// methods may be called from multiple goroutines.
type Problem struct {
	times []float64
	dims  Dimensions

	// derivatives(d, j) is the factor for the d-th derivative of t^j.
	derivatives *mat.Dense

	rows int
	a    *mat.Dense
	// b is nil when there are no outputs.
	b *mat.Dense

	state    State
	segments []Segment
	report   FitReport

	diagnostics    Diagnostics
	conditionLimit float64
}

// NewProblem returns a problem over the given knot times with numCoefficients coefficients per
// segment (polynomial degree numCoefficients-1) and numOutputs output dimensions.
func NewProblem(times []float64, numCoefficients, numOutputs int, opts ...Option) (*Problem, error) {
	if len(times) < 2 {
		return nil, errors.Wrapf(ErrInvalidInput, "need at least 2 knot times, got %d", len(times))
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, errors.Wrapf(ErrInvalidInput, "knot time %d is not finite: %v", i, t)
		}
		if i > 0 && t <= times[i-1] {
			return nil, errors.Wrapf(ErrInvalidInput,
				"times are not monotonically increasing: times[%d]=%v, times[%d]=%v", i-1, times[i-1], i, t)
		}
	}
	if numCoefficients < 1 {
		return nil, errors.Wrapf(ErrInvalidInput, "need at least 1 coefficient, got %d", numCoefficients)
	}
	if numOutputs < 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "number of outputs must be non-negative, got %d", numOutputs)
	}

	numSegments := len(times) - 1
	dimension := numSegments * numCoefficients
	p := &Problem{
		times: append([]float64(nil), times...),
		dims: Dimensions{
			Knots:        len(times),
			Segments:     numSegments,
			Coefficients: numCoefficients,
			Outputs:      numOutputs,
			Unknowns:     dimension,
		},
		derivatives:    newDerivativeMatrix(numCoefficients),
		a:              mat.NewDense(dimension, dimension, nil),
		state:          Building,
		diagnostics:    noopDiagnostics{},
		conditionLimit: mat.ConditionTolerance,
	}
	if numOutputs > 0 {
		p.b = mat.NewDense(dimension, numOutputs, nil)
	}
	for _, opt := range opts {
		opt(p)
	}

	p.diagnostics.Constructed(p.dims)
	return p, nil
}

// Dimensions returns the shape of the problem.
func (p *Problem) Dimensions() Dimensions {
	return p.dims
}

// NumKnots returns the number of knots.
func (p *Problem) NumKnots() int {
	return p.dims.Knots
}

// NumSegments returns the number of segments, one less than the number of knots.
func (p *Problem) NumSegments() int {
	return p.dims.Segments
}

// NumCoefficients returns the number of coefficients per segment and output.
func (p *Problem) NumCoefficients() int {
	return p.dims.Coefficients
}

// NumOutputs returns the output dimensionality.
func (p *Problem) NumOutputs() int {
	return p.dims.Outputs
}

// Dimension returns the number of unknowns, which is also the number of rows Fit requires.
func (p *Problem) Dimension() int {
	return p.dims.Unknowns
}

// Rows returns the number of constraint rows registered so far.
func (p *Problem) Rows() int {
	return p.rows
}

// Times returns a copy of the knot times.
func (p *Problem) Times() []float64 {
	return append([]float64(nil), p.times...)
}

// State returns the lifecycle stage of the problem.
func (p *Problem) State() State {
	return p.state
}

func (p *Problem) checkBuilding() error {
	if p.state != Building {
		return ErrAlreadyFit
	}
	return nil
}

func (p *Problem) checkKnot(knot int) error {
	if knot < 0 || knot >= p.dims.Knots {
		return NewKnotOutOfRangeError(knot, p.dims.Knots)
	}
	return nil
}

func (p *Problem) checkDerivative(derivative int) error {
	if derivative < 0 || derivative >= p.dims.Coefficients {
		return NewDerivativeOutOfRangeError(derivative, p.dims.Coefficients)
	}
	return nil
}

func (p *Problem) checkRowBudget(adding int) error {
	if p.rows+adding > p.dims.Unknowns {
		return NewRowBudgetError(p.rows, adding, p.dims.Unknowns)
	}
	return nil
}

// setRow writes vec, scaled by sign, into the coefficient block of segment in the current row.
func (p *Problem) setRow(segment int, vec []float64, sign float64) {
	offset := segment * p.dims.Coefficients
	for j, v := range vec {
		p.a.Set(p.rows, offset+j, sign*v)
	}
}

// AddConstantConstraint requires the derivative-th derivative of the curve at knot to equal value.
// An interior knot is shared by two segments and contributes one row for each of them; the first
// and last knots contribute a single row. Nothing is mutated when an error is returned.
func (p *Problem) AddConstantConstraint(knot, derivative int, value []float64) error {
	if err := p.checkBuilding(); err != nil {
		return err
	}
	if err := p.checkKnot(knot); err != nil {
		return err
	}
	if err := p.checkDerivative(derivative); err != nil {
		return err
	}
	if len(value) != p.dims.Outputs {
		return NewOutputDimensionError(len(value), p.dims.Outputs)
	}
	for i, v := range value {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidInput, "value[%d] is not finite: %v", i, v)
		}
	}

	var segments []int
	if knot > 0 {
		segments = append(segments, knot-1)
	}
	if knot+1 < p.dims.Knots {
		segments = append(segments, knot)
	}
	if err := p.checkRowBudget(len(segments)); err != nil {
		return err
	}

	vec := basisVector(make([]float64, p.dims.Coefficients), p.derivatives, p.times[knot], derivative)
	for _, segment := range segments {
		p.setRow(segment, vec, 1)
		if p.b != nil {
			p.b.SetRow(p.rows, value)
		}
		p.rows++
	}

	p.diagnostics.ConstraintAdded(ConstantConstraint, knot, derivative, len(segments), p.rows)
	return nil
}

// AddContinuityConstraint requires the derivative-th derivatives of the segments ending and
// starting at knot to agree there. Only interior knots are accepted.
func (p *Problem) AddContinuityConstraint(knot, derivative int) error {
	if err := p.checkBuilding(); err != nil {
		return err
	}
	if err := p.checkKnot(knot); err != nil {
		return err
	}
	if knot == 0 || knot+1 == p.dims.Knots {
		return NewBoundaryContinuityError(knot, p.dims.Knots)
	}
	if err := p.checkDerivative(derivative); err != nil {
		return err
	}
	if err := p.checkRowBudget(1); err != nil {
		return err
	}

	vec := basisVector(make([]float64, p.dims.Coefficients), p.derivatives, p.times[knot], derivative)
	p.setRow(knot-1, vec, 1)
	p.setRow(knot, vec, -1)
	// b rows start zeroed and are never written twice.
	p.rows++

	p.diagnostics.ConstraintAdded(ContinuityConstraint, knot, derivative, 1, p.rows)
	return nil
}

// Fit solves the registered system and stores one polynomial per segment. Exactly Dimension rows
// must have been registered. The constraint matrix is factorized once with a Householder QR
// decomposition shared by every output. Fit may be called again and reproduces the same
// coefficients; A and B are left untouched.
func (p *Problem) Fit() error {
	if p.rows < p.dims.Unknowns {
		return errors.Wrapf(ErrUnderdetermined, "%d of %d rows registered", p.rows, p.dims.Unknowns)
	}
	if p.rows > p.dims.Unknowns {
		return errors.Wrapf(ErrOverdetermined, "%d of %d rows registered", p.rows, p.dims.Unknowns)
	}

	var qr mat.QR
	qr.Factorize(p.a)
	cond := qr.Cond()
	if math.IsNaN(cond) || cond > p.conditionLimit {
		return errors.Wrapf(ErrSingularSystem, "condition number %g exceeds %g", cond, p.conditionLimit)
	}

	segments := make([]Segment, p.dims.Segments)
	for i := range segments {
		segments[i] = Segment{Start: p.times[i], End: p.times[i+1]}
	}
	report := FitReport{Rows: p.rows, Unknowns: p.dims.Unknowns, Condition: cond}

	if p.b != nil {
		var x mat.Dense
		if err := qr.SolveTo(&x, false, p.b); err != nil {
			// gonum still writes the solution when only its own tolerance is exceeded.
			var condErr mat.Condition
			if !errors.As(err, &condErr) {
				return errors.Wrap(err, "solving spline system")
			}
			if c := float64(condErr); math.IsInf(c, 0) || c > p.conditionLimit {
				return errors.Wrapf(ErrSingularSystem, "condition number %g", c)
			}
		}
		if !allFinite(x.RawMatrix().Data) {
			return errors.Wrap(ErrSingularSystem, "solution is not finite")
		}

		c := p.dims.Coefficients
		for i := range segments {
			coeffs := mat.NewDense(p.dims.Outputs, c, nil)
			coeffs.Copy(x.Slice(i*c, (i+1)*c, 0, p.dims.Outputs).T())
			segments[i].Coefficients = coeffs
		}
		report.Residual = residualNorm(p.a, &x, p.b)
	}

	p.segments = segments
	p.report = report
	p.state = Fit
	p.diagnostics.Fitted(report)
	return nil
}

func allFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SegmentIndex returns the segment whose polynomial is used at time t. Times at or before the
// first knot map to segment 0 and times at or after the last knot map to the last segment, so
// queries outside the knot range extrapolate the boundary polynomials. Otherwise the segment
// starting at the last knot <= t is returned. The result is always in [0, NumSegments()).
func (p *Problem) SegmentIndex(t float64) int {
	// NaN compares false against every knot and is treated like a time before the first one.
	if math.IsNaN(t) || t <= p.times[0] {
		return 0
	}
	if t >= p.times[p.dims.Knots-1] {
		return p.dims.Segments - 1
	}
	return sort.Search(p.dims.Knots, func(i int) bool { return p.times[i] > t }) - 1
}

// Interpolate evaluates the derivative-th derivative of the fitted curve at time t, returning one
// value per output. t must be finite.
func (p *Problem) Interpolate(t float64, derivative int) ([]float64, error) {
	return p.EvaluateSegment(p.SegmentIndex(t), t, derivative)
}

// EvaluateSegment evaluates the derivative-th derivative of one segment's polynomial at time t,
// regardless of whether t lies inside that segment.
func (p *Problem) EvaluateSegment(segment int, t float64, derivative int) ([]float64, error) {
	if p.state != Fit {
		return nil, ErrNotFit
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, errors.Wrapf(ErrInvalidInput, "query time is not finite: %v", t)
	}
	if segment < 0 || segment >= p.dims.Segments {
		return nil, errors.Wrapf(ErrInvalidInput, "segment %d out of range [0, %d)", segment, p.dims.Segments)
	}
	if err := p.checkDerivative(derivative); err != nil {
		return nil, err
	}

	out := make([]float64, p.dims.Outputs)
	if p.dims.Outputs == 0 {
		return out, nil
	}
	vec := basisVector(make([]float64, p.dims.Coefficients), p.derivatives, t, derivative)
	coeffs := p.segments[segment].Coefficients
	for i := range out {
		out[i] = floats.Dot(vec, coeffs.RawRowView(i))
	}
	return out, nil
}

// Segments returns copies of the fitted segments in knot order.
func (p *Problem) Segments() ([]Segment, error) {
	if p.state != Fit {
		return nil, ErrNotFit
	}
	out := make([]Segment, len(p.segments))
	for i, s := range p.segments {
		out[i] = s.clone()
	}
	return out, nil
}

// Segment returns a copy of the i-th fitted segment.
func (p *Problem) Segment(i int) (Segment, error) {
	if p.state != Fit {
		return Segment{}, ErrNotFit
	}
	if i < 0 || i >= p.dims.Segments {
		return Segment{}, errors.Wrapf(ErrInvalidInput, "segment %d out of range [0, %d)", i, p.dims.Segments)
	}
	return p.segments[i].clone(), nil
}

// System returns copies of the constraint matrix A and right hand side B. B is nil when the
// problem has no outputs.
func (p *Problem) System() (*mat.Dense, *mat.Dense) {
	a := mat.DenseCopyOf(p.a)
	if p.b == nil {
		return a, nil
	}
	return a, mat.DenseCopyOf(p.b)
}
