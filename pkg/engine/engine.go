package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/wildfunctions/derivada/pkg/deriv"
	"github.com/wildfunctions/derivada/pkg/expr"
	"github.com/wildfunctions/derivada/pkg/journal"
	"github.com/wildfunctions/derivada/pkg/parse"
)

var tracer = otel.Tracer("derivada.engine")

var (
	// ErrTooDeep indicates the input tree exceeds Config.MaxDepth.
	ErrTooDeep = parse.ErrTooDeep

	// ErrEmptyVariable indicates no differentiation variable was given.
	ErrEmptyVariable = errors.New("differentiation variable is empty")
)

// Recorder persists finished derivations. *journal.Journal implements it.
type Recorder interface {
	Append(e journal.Entry) (journal.Entry, error)
}

// Request asks for one derivative. Either Input (surface syntax) or Expr
// must be set; Expr wins when both are.
type Request struct {
	Input    string    `json:"input"`
	Expr     expr.Expr `json:"-"`
	Variable string    `json:"variable,omitempty"`
}

// Result is the outcome of one Request.
type Result struct {
	ID         string        `json:"id,omitempty"`
	Input      string        `json:"input"`
	Variable   string        `json:"variable"`
	Output     string        `json:"output,omitempty"`
	LaTeX      string        `json:"latex,omitempty"`
	Nodes      int           `json:"nodes,omitempty"`
	Rules      int           `json:"rules_fired,omitempty"`
	Error      string        `json:"error,omitempty"`
	Shape      string        `json:"shape,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Derivative expr.Expr     `json:"-"`
	Err        error         `json:"-"`
}

// OK reports whether the derivation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Engine runs derivation requests for the CLI, REPL and HTTP front ends.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	recorder Recorder
}

// New creates a new engine from the given config. A nil logger uses
// slog.Default().
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// WithRecorder makes the engine record every finished derivation.
func (e *Engine) WithRecorder(r Recorder) *Engine {
	e.recorder = r
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetTrace toggles per-rule debug logging.
func (e *Engine) SetTrace(on bool) { e.cfg.Trace = on }

// Derive parses and differentiates a single request. Failures are reported in
// Result.Err; the returned Result is always populated with the input.
func (e *Engine) Derive(ctx context.Context, req Request) Result {
	ctx, span := tracer.Start(ctx, "engine.Derive")
	defer span.End()

	start := time.Now()
	res := e.derive(ctx, req)
	res.Duration = time.Since(start)
	deriveDuration.Observe(res.Duration.Seconds())

	outcome := outcomeOK
	var nr *deriv.NoRuleMatchedError
	switch {
	case res.Err == nil:
		resultNodes.Observe(float64(res.Nodes))
	case errors.As(res.Err, &nr):
		outcome = outcomeNoRule
		res.Shape = nr.Shape
	case errors.Is(res.Err, parse.ErrSyntax):
		outcome = outcomeSyntaxError
	default:
		outcome = outcomeRejected
	}
	derivationsTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(
		attribute.String("derivada.variable", res.Variable),
		attribute.String("derivada.outcome", outcome),
		attribute.Int("derivada.rules_fired", res.Rules),
	)
	if res.Err != nil {
		res.Error = res.Err.Error()
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	e.logger.Debug("derivation finished",
		slog.String("input", res.Input),
		slog.String("variable", res.Variable),
		slog.String("outcome", outcome),
		slog.Duration("duration", res.Duration))

	e.record(&res)
	return res
}

func (e *Engine) derive(ctx context.Context, req Request) Result {
	res := Result{Input: req.Input, Variable: req.Variable}
	if res.Variable == "" {
		res.Variable = e.cfg.Variable
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if res.Variable == "" {
		res.Err = ErrEmptyVariable
		return res
	}

	in := req.Expr
	if in == nil {
		parsed, err := parse.ParseLimit(req.Input, e.cfg.MaxDepth)
		if err != nil {
			res.Err = err
			return res
		}
		in = parsed
	}
	if depth := in.Depth(); e.cfg.MaxDepth > 0 && depth > e.cfg.MaxDepth {
		res.Err = fmt.Errorf("%w: depth %d exceeds limit %d", ErrTooDeep, depth, e.cfg.MaxDepth)
		return res
	}
	res.Input = in.String()

	out, err := deriv.DeriveTraced(in, res.Variable, func(r deriv.Rule, node expr.Expr) {
		res.Rules++
		ruleFirings.WithLabelValues(r.String()).Inc()
		if e.cfg.Trace {
			e.logger.Debug("rule fired", slog.String("rule", r.String()), slog.String("node", node.String()))
		}
	})
	if err != nil {
		res.Err = err
		return res
	}

	res.Derivative = out
	res.Output = out.String()
	res.LaTeX = out.LaTeX()
	res.Nodes = out.NodeCount()
	return res
}

func (e *Engine) record(res *Result) {
	if e.recorder == nil {
		return
	}
	entry, err := e.recorder.Append(journal.Entry{
		Input:    res.Input,
		Variable: res.Variable,
		Output:   res.Output,
		Error:    res.Error,
	})
	if err != nil {
		e.logger.Warn("failed to record derivation", slog.String("error", err.Error()))
		return
	}
	res.ID = entry.ID
}

// DeriveBatch runs all requests with at most Config.Workers in flight.
// Results are in request order and a failing request does not stop the
// others.
func (e *Engine) DeriveBatch(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i := range reqs {
		g.Go(func() error {
			results[i] = e.Derive(ctx, reqs[i])
			return nil
		})
	}
	g.Wait()
	return results
}

// Summarize builds a Report from finished results.
func Summarize(results []Result) Report {
	r := Report{Results: results}
	for _, res := range results {
		if res.OK() {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
	return r
}
