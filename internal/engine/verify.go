package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/sweep"
	"github.com/born-ml/mathengine/internal/tensor"
)

// ErrUnknownOp reports an operation name outside the catalogue.
var ErrUnknownOp = errors.New("engine: unknown operation")

// VerifyOptions selects what Verify sweeps.
type VerifyOptions struct {
	// Ops limits the sweep to these operations. Empty means all.
	Ops []string
	// Params overrides entries of each operation's default parameters.
	Params string
	// Count overrides the number of trials when positive.
	Count int
	// Seed seeds the trial generator.
	Seed uint64
	// Large adds the large-shape regimes.
	Large bool
	// Parallel controls how many trials run at once.
	Parallel parallel.Config
	// Logger receives one line per result. Nil means slog.Default().
	Logger *slog.Logger
}

// Verify sweeps the selected operations, comparing got against want.
// It stops early when ctx is cancelled.
func Verify(ctx context.Context, got, want tensor.Backend, opts VerifyOptions) ([]sweep.Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	override, err := sweep.Parse(opts.Params)
	if err != nil {
		return nil, err
	}

	cases, err := selectCases(opts.Ops)
	if err != nil {
		return nil, err
	}

	sweepOpts := sweep.DefaultOptions()
	sweepOpts.Seed = opts.Seed
	sweepOpts.Count = opts.Count
	sweepOpts.Parallel = opts.Parallel

	var results []sweep.Result
	for _, c := range cases {
		regimes := []string{c.Params}
		if opts.Large {
			regimes = append(regimes, c.Large...)
		}
		for _, regime := range regimes {
			params := sweep.MustParse(regime).With(override)
			res, err := sweep.Run(ctx, c, params, got, want, sweepOpts)
			if err != nil {
				return results, err
			}
			log.Info("verified", "op", res.Op, "trials", res.Trials, "failed", res.Failed,
				"max_diff", res.MaxDiff, "skipped", res.Skipped)
			results = append(results, res)
		}
	}
	return results, nil
}

func selectCases(ops []string) ([]sweep.Case, error) {
	if len(ops) == 0 {
		return sweep.Cases(), nil
	}
	cases := make([]sweep.Case, 0, len(ops))
	for _, op := range ops {
		c, ok := sweep.Lookup(op)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
		}
		cases = append(cases, c)
	}
	return cases, nil
}
