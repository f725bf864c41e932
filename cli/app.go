// Package cli contains the splinefit command line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagDebug    = "debug"
	generalFlagLogLevel = "log-level"

	fitFlagConfig       = "config"
	fitFlagOutput       = "output"
	fitFlagStep         = "step"
	fitFlagDerivative   = "derivative"
	fitFlagPlot         = "plot"
	fitFlagCoefficients = "coefficients"
)

var configFlag = &cli.StringFlag{
	Name:     fitFlagConfig,
	Aliases:  []string{"c"},
	Usage:    "load the problem from json `FILE`",
	Required: true,
}

var app = &cli.App{
	Name:            "splinefit",
	Usage:           "fit piecewise polynomial trajectories to knot constraints",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging and solver diagnostics",
		},
		&cli.StringFlag{
			Name:  generalFlagLogLevel,
			Usage: "minimum log `LEVEL`: debug, info, warn or error",
			Value: "info",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "fit",
			Usage:     "fit a problem and write samples of the fitted curve",
			UsageText: "splinefit fit --config <problem.json> [other options]",
			Flags: []cli.Flag{
				configFlag,
				&cli.StringFlag{
					Name:  fitFlagOutput,
					Usage: "write tab separated samples to `FILE` instead of stdout",
				},
				&cli.Float64Flag{
					Name:  fitFlagStep,
					Usage: "spacing between sampled times",
					Value: 0.05,
				},
				&cli.IntFlag{
					Name:  fitFlagDerivative,
					Usage: "derivative order to sample",
				},
				&cli.StringFlag{
					Name:  fitFlagPlot,
					Usage: "also render the sampled curve to `FILE` (png, svg, pdf)",
				},
				&cli.BoolFlag{
					Name:  fitFlagCoefficients,
					Usage: "print the fitted segment coefficients",
				},
			},
			Action: FitAction,
		},
		{
			Name:      "validate",
			Usage:     "check that a problem is well formed without fitting it",
			UsageText: "splinefit validate --config <problem.json>",
			Flags:     []cli.Flag{configFlag},
			Action:    ValidateAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
