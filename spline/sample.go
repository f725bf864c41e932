package spline

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/splinefit/utils"
)

// Sample evaluates the derivative-th derivative of a fitted problem at every time in times. Row i
// of the result holds the outputs at times[i]; every time must be finite. Evaluation is spread over
// several goroutines.
func Sample(ctx context.Context, p *Problem, times []float64, derivative int) (*mat.Dense, error) {
	if p.State() != Fit {
		return nil, ErrNotFit
	}
	if err := p.checkDerivative(derivative); err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "no sample times")
	}
	if p.NumOutputs() == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "problem has no outputs to sample")
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, errors.Wrapf(ErrInvalidInput, "sample time %d is not finite: %v", i, t)
		}
	}

	var (
		errMu    sync.Mutex
		firstErr error
	)
	out := mat.NewDense(len(times), p.NumOutputs(), nil)
	err := utils.GroupWorkParallel(
		ctx,
		len(times),
		nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				values, err := p.Interpolate(times[workNum], derivative)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = errors.Wrapf(err, "sampling time %d", workNum)
					}
					errMu.Unlock()
					return
				}
				out.SetRow(workNum, values)
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// maxSamples bounds the grid produced by Linspace.
const maxSamples = 1 << 24

// Linspace returns times from start to end inclusive, spaced by at most step.
func Linspace(start, end, step float64) ([]float64, error) {
	if !(end > start) || !(step > 0) || math.IsInf(end-start, 0) {
		return nil, errors.Wrapf(ErrInvalidInput, "bad sample range [%v, %v] with step %v", start, end, step)
	}
	count := math.Ceil((end-start)/step-1e-9) + 1
	if !(count <= maxSamples) {
		return nil, errors.Wrapf(ErrInvalidInput, "step %v over [%v, %v] needs more than %d samples",
			step, start, end, maxSamples)
	}
	n := int(count)
	times := floats.Span(make([]float64, n), start, end)
	times[n-1] = end
	return times, nil
}

// SampleTimes returns an evenly spaced grid covering the knot range of p.
func SampleTimes(p *Problem, step float64) ([]float64, error) {
	return Linspace(p.times[0], p.times[len(p.times)-1], step)
}
