package repl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/ormasoftchile/ucrepl/pkg/prompt"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
	"go.uber.org/zap"
)

// Fixed operator-facing messages.
const (
	MsgInformParams = "Inform the parameters for the use case execution"
	MsgParams       = "Params:"
	MsgAccessDenied = "Access denied"
	MsgResult       = "Result:"
)

// Outcome is what one Execute call ended with.
type Outcome int

const (
	// OutcomeAborted means Execute returned an error.
	OutcomeAborted Outcome = iota
	OutcomeDenied
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDenied:
		return "denied"
	default:
		return "aborted"
	}
}

// Orchestrator runs a single use case: prompt, confirm, authorize, run,
// report.
type Orchestrator struct {
	Collector prompt.Collector
	Output    io.Writer
	Theme     Theme
	Logger    *zap.Logger
}

func (o *Orchestrator) out() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

func (o *Orchestrator) theme() Theme {
	if o.Theme == nil {
		return PlainTheme{}
	}
	return o.Theme
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Execute collects answers for uc, shows them, and runs uc when identity
// is authorized. Run is never called when authorization is refused.
// Errors from the collector, Authorize or Run are returned unhandled.
func (o *Orchestrator) Execute(ctx context.Context, uc usecase.UseCase, identity usecase.Identity) (Outcome, error) {
	w, th := o.out(), o.theme()
	log := o.logger().With(zap.String("run_id", uuid.NewString()))

	fmt.Fprintf(w, "\n%s\n", MsgInformParams)
	specs := prompt.Derive(uc.RequestSchema())
	answers, err := o.Collector.Collect(ctx, specs)
	if err != nil {
		return OutcomeAborted, errors.Wrap(err, "collect parameters")
	}

	dump, err := json.MarshalIndent(answers, "", " ")
	if err != nil {
		return OutcomeAborted, errors.Wrap(err, "encode parameters")
	}
	fmt.Fprintf(w, "\n%s\n", th.Section(MsgParams))
	fmt.Fprintln(w, th.Params(string(dump)))

	allowed, err := uc.Authorize(ctx, identity)
	if err != nil {
		return OutcomeAborted, errors.Wrap(err, "authorize")
	}
	log.Debug("authorization evaluated", zap.Bool("allowed", allowed))
	if !allowed {
		fmt.Fprintf(w, "\n%s\n", th.Denied(MsgAccessDenied))
		log.Info("use case denied")
		return OutcomeDenied, nil
	}

	start := time.Now()
	result, err := uc.Run(ctx, answers)
	if err != nil {
		log.Warn("use case run failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return OutcomeAborted, errors.Wrap(err, "run")
	}

	dump, err = json.MarshalIndent(result, "", " ")
	if err != nil {
		return OutcomeAborted, errors.Wrap(err, "encode result")
	}
	fmt.Fprintf(w, "\n%s\n", th.Section(MsgResult))

	outcome := OutcomeFailed
	if result.OK {
		outcome = OutcomeSucceeded
		fmt.Fprintln(w, th.Success(string(dump)))
	} else {
		fmt.Fprintln(w, th.Failure(string(dump)))
	}
	log.Info("use case finished", zap.Stringer("outcome", outcome), zap.Duration("duration", time.Since(start)))
	return outcome, nil
}
