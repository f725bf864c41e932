package cli

import (
	"github.com/montanaflynn/stats"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/splinefit/logging"
)

type outputSummary struct {
	Min, Max, Mean, StdDev float64
}

// summarize computes per output statistics over the sampled values, one column per output.
func summarize(samples *mat.Dense) ([]outputSummary, error) {
	rows, cols := samples.Dims()
	summaries := make([]outputSummary, 0, cols)
	column := make([]float64, rows)
	for output := 0; output < cols; output++ {
		mat.Col(column, output, samples)
		data := stats.Float64Data(column)

		minVal, err := data.Min()
		maxVal, err2 := data.Max()
		mean, err3 := data.Mean()
		stdDev, err4 := data.StandardDeviation()
		if err := multierr.Combine(err, err2, err3, err4); err != nil {
			return nil, err
		}
		summaries = append(summaries, outputSummary{Min: minVal, Max: maxVal, Mean: mean, StdDev: stdDev})
	}
	return summaries, nil
}

func logSummary(logger logging.Logger, samples *mat.Dense) {
	summaries, err := summarize(samples)
	if err != nil {
		logger.Warnw("cannot summarize samples", "error", err)
		return
	}
	for output, s := range summaries {
		logger.Infow("output summary", "output", output, "min", s.Min, "max", s.Max, "mean", s.Mean, "std_dev", s.StdDev)
	}
}
