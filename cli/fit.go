package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/splinefit/logging"
	"go.viam.com/splinefit/spline"
	"go.viam.com/splinefit/splineplot"
)

// newLogger writes to the app's error stream. --debug wins over --log-level.
func newLogger(c *cli.Context) (logging.Logger, error) {
	level := logging.DEBUG
	if !c.Bool(generalFlagDebug) {
		var err error
		if level, err = logging.LevelFromString(c.String(generalFlagLogLevel)); err != nil {
			return nil, err
		}
	}
	logger := logging.NewBlankLogger("splinefit")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(level)
	return logger, nil
}

func loadProblem(c *cli.Context, logger logging.Logger) (*spline.Problem, error) {
	path := c.String(fitFlagConfig)
	logger.Infof("reading problem from %s", path)
	cfg, err := spline.ReadProblemConfig(path)
	if err != nil {
		return nil, err
	}
	var opts []spline.Option
	if c.Bool(generalFlagDebug) {
		opts = append(opts, spline.WithLogger(logger.Sublogger("problem")))
	}
	return cfg.Build(opts...)
}

// ValidateAction is the corresponding action for 'validate'.
func ValidateAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := spline.ReadProblemConfig(c.String(fitFlagConfig))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			//nolint:errorlint
			if e == spline.ErrInvalidInput {
				continue
			}
			logger.Error(e)
		}
		return errors.Errorf("%s is not a valid problem", c.String(fitFlagConfig))
	}
	segments := len(cfg.Times) - 1
	printf(c.App.Writer, "%s is valid: %d segments, %d unknowns, %d outputs",
		c.String(fitFlagConfig), segments, segments*cfg.NumCoefficients, cfg.NumOutputs)
	return nil
}

// FitAction is the corresponding action for 'fit'.
func FitAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()

	p, err := loadProblem(c, logger)
	if err != nil {
		return err
	}
	if err := p.Fit(); err != nil {
		return err
	}
	report, err := p.Report()
	if err != nil {
		return err
	}
	logger.Infow("fit problem", "segments", p.NumSegments(), "condition", report.Condition, "residual", report.Residual)

	if c.Bool(fitFlagCoefficients) {
		if err := writeCoefficients(c.App.Writer, p); err != nil {
			return err
		}
	}

	derivative := c.Int(fitFlagDerivative)
	times, err := spline.SampleTimes(p, c.Float64(fitFlagStep))
	if err != nil {
		return err
	}
	logger.Debugw("sampling fitted problem", "samples", len(times), "derivative", derivative)
	samples, err := spline.Sample(c.Context, p, times, derivative)
	if err != nil {
		return err
	}
	logSummary(logger, samples)

	if out := c.String(fitFlagOutput); out != "" {
		if err := writeSamplesFile(out, p, times, samples); err != nil {
			return err
		}
		logger.Infof("wrote %d samples to %s", len(times), out)
	} else if err := writeSamples(c.App.Writer, p, times, samples); err != nil {
		return err
	}

	if plotPath := c.String(fitFlagPlot); plotPath != "" {
		opts := splineplot.DefaultOptions()
		opts.Derivative = derivative
		opts.Step = c.Float64(fitFlagStep)
		opts.Title = c.String(fitFlagConfig)
		if err := splineplot.Render(c.Context, p, plotPath, opts); err != nil {
			return err
		}
		logger.Infof("rendered plot to %s", plotPath)
	}
	return nil
}

// writeSamples writes one line per sample: the time, each output value and the segment index,
// separated by tabs.
func writeSamples(w io.Writer, p *spline.Problem, times []float64, samples *mat.Dense) error {
	buf := bufio.NewWriter(w)
	_, cols := samples.Dims()
	fields := make([]string, 0, cols+2)
	for i, t := range times {
		fields = fields[:0]
		fields = append(fields, strconv.FormatFloat(t, 'g', -1, 64))
		for _, v := range samples.RawRowView(i) {
			fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
		}
		fields = append(fields, strconv.Itoa(p.SegmentIndex(t)))
		if _, err := fmt.Fprintln(buf, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return buf.Flush()
}

func writeSamplesFile(path string, p *spline.Problem, times []float64, samples *mat.Dense) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return writeSamples(f, p, times, samples)
}

func writeCoefficients(w io.Writer, p *spline.Problem) error {
	segments, err := p.Segments()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	header := table.Row{"Segment", "Start", "End", "Output"}
	header = append(header, lo.Times(p.NumCoefficients(), func(j int) interface{} {
		return fmt.Sprintf("c%d", j)
	})...)
	t.AppendHeader(header)
	for i, seg := range segments {
		for output := 0; output < p.NumOutputs(); output++ {
			row := table.Row{i, seg.Start, seg.End, output}
			for _, c := range seg.Coefficients.RawRowView(output) {
				row = append(row, strconv.FormatFloat(c, 'g', 8, 64))
			}
			t.AppendRow(row)
		}
	}
	printf(w, "%s", t.Render())
	return nil
}
