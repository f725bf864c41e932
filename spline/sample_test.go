package spline

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.viam.com/test"
)

func TestLinspace(t *testing.T) {
	times, err := Linspace(0, 3, 0.05)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, times, test.ShouldHaveLength, 61)
	test.That(t, times[0], test.ShouldEqual, 0.)
	test.That(t, times[60], test.ShouldEqual, 3.)
	test.That(t, times[1], test.ShouldAlmostEqual, 0.05, 1e-12)

	// a step that does not divide the range evenly is shrunk
	times, err = Linspace(0, 1, 0.3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, times, test.ShouldHaveLength, 5)
	test.That(t, times[4], test.ShouldEqual, 1.)

	for _, tc := range []struct{ start, end, step float64 }{
		{1, 1, 0.1},
		{1, 0, 0.1},
		{0, 1, 0},
		{0, 1, -1},
		{0, 1, 1e-300},
		{0, 1, math.SmallestNonzeroFloat64},
		{0, math.NaN(), 0.1},
	} {
		_, err := Linspace(tc.start, tc.end, tc.step)
		test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	}
}

func TestSample(t *testing.T) {
	p := twoOutputProblem(t)

	_, err := Sample(context.Background(), p, []float64{0}, 0)
	test.That(t, errors.Is(err, ErrNotFit), test.ShouldBeTrue)

	test.That(t, p.Fit(), test.ShouldBeNil)
	times, err := SampleTimes(p, 0.05)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, times, test.ShouldHaveLength, 61)

	for derivative := 0; derivative < 3; derivative++ {
		samples, err := Sample(context.Background(), p, times, derivative)
		test.That(t, err, test.ShouldBeNil)
		rows, cols := samples.Dims()
		test.That(t, rows, test.ShouldEqual, len(times))
		test.That(t, cols, test.ShouldEqual, 2)
		for i, tm := range times {
			expected, err := p.Interpolate(tm, derivative)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, samples.RawRowView(i), test.ShouldResemble, expected)
		}
	}

	_, err = Sample(context.Background(), p, nil, 0)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	_, err = Sample(context.Background(), p, times, 4)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	// a bad time rejects the whole request instead of leaving rows unset
	_, err = Sample(context.Background(), p, []float64{0, 0.5, math.NaN(), 1, 2, 3}, 0)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sample time 2 is not finite")
	_, err = Sample(context.Background(), p, []float64{0, math.Inf(1)}, 0)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Sample(ctx, p, times, 0)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestSampleNoOutputs(t *testing.T) {
	p, err := NewProblem([]float64{0, 1}, 1, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.AddConstantConstraint(0, 0, nil), test.ShouldBeNil)
	test.That(t, p.Fit(), test.ShouldBeNil)

	_, err = Sample(context.Background(), p, []float64{0.5}, 0)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}
