package spline

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ConstraintConfig describes a single constraint registration.
type ConstraintConfig struct {
	Type       ConstraintKind `json:"type"`
	Knot       int            `json:"knot"`
	Derivative int            `json:"derivative"`
	// Value is required for constant constraints and must be empty for continuity constraints.
	Value []float64 `json:"value,omitempty"`
}

// rows returns how many equations the constraint contributes to a problem with numKnots knots.
func (cc ConstraintConfig) rows(numKnots int) int {
	if cc.Type == ConstantConstraint && cc.Knot > 0 && cc.Knot+1 < numKnots {
		return 2
	}
	return 1
}

// ProblemConfig is the serializable description of a Problem and its constraints. Constraints
// are registered in the order they are listed.
type ProblemConfig struct {
	Times           []float64          `json:"times"`
	NumCoefficients int                `json:"num_coefficients"`
	NumOutputs      int                `json:"num_outputs"`
	Constraints     []ConstraintConfig `json:"constraints"`
}

// ReadProblemConfig loads a ProblemConfig from a json file.
func ReadProblemConfig(path string) (*ProblemConfig, error) {
	//nolint:gosec
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &ProblemConfig{}
	if err := json.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing problem config %q", path)
	}
	return cfg, nil
}

// Validate reports every problem with the config at once. A config that validates builds into a
// problem with exactly as many rows as unknowns.
func (cfg *ProblemConfig) Validate() error {
	var err error
	numKnots := len(cfg.Times)
	if numKnots < 2 {
		err = multierr.Append(err, errors.Errorf("need at least 2 knot times, got %d", numKnots))
	}
	for i := 1; i < numKnots; i++ {
		if !(cfg.Times[i] > cfg.Times[i-1]) {
			err = multierr.Append(err, errors.Errorf("times are not monotonically increasing at index %d", i))
		}
	}
	if cfg.NumCoefficients < 1 {
		err = multierr.Append(err, errors.Errorf("num_coefficients must be at least 1, got %d", cfg.NumCoefficients))
	}
	if cfg.NumOutputs < 0 {
		err = multierr.Append(err, errors.Errorf("num_outputs must be non-negative, got %d", cfg.NumOutputs))
	}

	rows := 0
	for i, cc := range cfg.Constraints {
		if cc.Knot < 0 || cc.Knot >= numKnots {
			err = multierr.Append(err, errors.Errorf("constraint %d: knot %d out of range [0, %d)", i, cc.Knot, numKnots))
		}
		if cc.Derivative < 0 || cc.Derivative >= cfg.NumCoefficients {
			err = multierr.Append(err, errors.Errorf("constraint %d: derivative %d out of range [0, %d)",
				i, cc.Derivative, cfg.NumCoefficients))
		}
		switch cc.Type {
		case ConstantConstraint:
			if len(cc.Value) != cfg.NumOutputs {
				err = multierr.Append(err, errors.Errorf("constraint %d: value has %d outputs but problem has %d",
					i, len(cc.Value), cfg.NumOutputs))
			}
		case ContinuityConstraint:
			if cc.Knot == 0 || cc.Knot+1 == numKnots {
				err = multierr.Append(err, errors.Errorf("constraint %d: continuity requires an interior knot, got %d", i, cc.Knot))
			}
			if len(cc.Value) != 0 {
				err = multierr.Append(err, errors.Errorf("constraint %d: continuity constraints take no value", i))
			}
		default:
			err = multierr.Append(err, errors.Errorf("constraint %d: unknown type %q", i, cc.Type))
		}
		rows += cc.rows(numKnots)
	}

	if numKnots >= 2 && cfg.NumCoefficients >= 1 {
		if want := (numKnots - 1) * cfg.NumCoefficients; rows != want {
			err = multierr.Append(err, errors.Errorf("constraints add %d rows but the problem has %d unknowns", rows, want))
		}
	}

	if err != nil {
		return multierr.Combine(ErrInvalidInput, err)
	}
	return nil
}

// Build constructs a problem from the config and registers its constraints. It does not fit.
func (cfg *ProblemConfig) Build(opts ...Option) (*Problem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := NewProblem(cfg.Times, cfg.NumCoefficients, cfg.NumOutputs, opts...)
	if err != nil {
		return nil, err
	}
	for i, cc := range cfg.Constraints {
		if err := cc.apply(p); err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i)
		}
	}
	return p, nil
}

func (cc ConstraintConfig) apply(p *Problem) error {
	switch cc.Type {
	case ConstantConstraint:
		return p.AddConstantConstraint(cc.Knot, cc.Derivative, cc.Value)
	case ContinuityConstraint:
		return p.AddContinuityConstraint(cc.Knot, cc.Derivative)
	}
	return errors.Wrapf(ErrInvalidInput, "unknown constraint type %q", cc.Type)
}
