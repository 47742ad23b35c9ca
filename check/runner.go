package check

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "imodcheck/check"

// Outcome is the result of one check in a run.
type Outcome struct {
	Check    string
	Err      error
	Skipped  bool
	Duration time.Duration
}

// Summary tallies a run.
type Summary struct {
	Ran, Skipped, Failed int
	Outcomes             []Outcome
}

// Runner executes checks sequentially against one Env.
type Runner struct {
	env *Env
}

// NewRunner returns a runner over env.
func NewRunner(env *Env) *Runner {
	return &Runner{env: env}
}

// Run executes checks in order, each in its own span.
//
// A ConfigurationError skips that check; any other error fails it. Either
// way the remaining checks still run. Cancellation of ctx stops the run and
// is returned together with the summary so far.
func (r *Runner) Run(ctx context.Context, checks []Check) (Summary, error) {
	var sum Summary
	log := r.env.logger()
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		out := r.runOne(ctx, c)
		if err := ctx.Err(); err != nil && out.Err != nil {
			return sum, err
		}
		sum.Outcomes = append(sum.Outcomes, out)
		switch {
		case out.Skipped:
			sum.Skipped++
			log.Warn("check skipped", "check", out.Check, "error", out.Err)
		case out.Err != nil:
			sum.Failed++
			log.Error("check failed", "check", out.Check, "error", out.Err)
		default:
			sum.Ran++
			log.Info("check done", "check", out.Check, "duration", out.Duration)
		}
	}
	return sum, nil
}

func (r *Runner) runOne(ctx context.Context, c Check) Outcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "check."+c.Name())
	defer span.End()
	span.SetAttributes(attribute.String("check.name", c.Name()))

	start := time.Now()
	err := c.Run(ctx, r.env)
	out := Outcome{Check: c.Name(), Err: err, Duration: time.Since(start)}
	if err != nil {
		out.Skipped = IsConfigurationError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("check.skipped", out.Skipped))
	}
	return out
}
