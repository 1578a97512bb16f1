package repl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ormasoftchile/ucrepl/pkg/prompt"
	"github.com/ormasoftchile/ucrepl/pkg/render"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
	"go.uber.org/zap"
)

// Banner lines printed once when a session starts.
const (
	BannerTitle = "Use Case REPL - Interactive Session"
	BannerHint  = "press ^C to exit"
)

// Session repeatedly selects, documents and executes use cases until its
// context is cancelled or the operator interrupts a prompt.
type Session struct {
	Entries  []usecase.Entry
	Identity usecase.Identity
	GroupBy  string

	Menu      Menu
	Collector prompt.Collector
	Output    io.Writer
	Theme     Theme
	Logger    *zap.Logger
}

// Run loops until ctx is cancelled or an interrupt unwinds a prompt, both
// of which end the session with a nil error. Any other failure is
// returned as is.
func (s *Session) Run(ctx context.Context) error {
	w := s.Output
	if w == nil {
		w = os.Stdout
	}
	th := s.Theme
	if th == nil {
		th = PlainTheme{}
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fmt.Fprintf(w, "\n%s\n", th.Banner(BannerTitle))
	fmt.Fprintf(w, "%s\n\n", th.Hint(BannerHint))

	selector := &Selector{Menu: s.Menu}
	orch := &Orchestrator{Collector: s.Collector, Output: w, Theme: th, Logger: log}

	for iteration := 1; ; iteration++ {
		if ctx.Err() != nil {
			return nil
		}
		err := s.cycle(ctx, selector, orch, w, th)
		if isInterrupt(ctx, err) {
			log.Debug("session interrupted", zap.Int("iteration", iteration))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
}

func (s *Session) cycle(ctx context.Context, sel *Selector, orch *Orchestrator, w io.Writer, th Theme) error {
	uc, err := sel.Select(ctx, s.Entries, s.GroupBy)
	if err != nil {
		return errors.Wrap(err, "select use case")
	}
	if err := render.Write(w, uc.Doc(), th); err != nil {
		return errors.Wrap(err, "render plan")
	}
	_, err = orch.Execute(ctx, uc, s.Identity)
	return err
}

// isInterrupt reports whether err, or a finished cycle with a cancelled
// ctx, ends the session cleanly. A failure that is not the cancellation
// itself still surfaces, even when ctx was cancelled meanwhile.
func isInterrupt(ctx context.Context, err error) bool {
	if err == nil {
		return ctx.Err() != nil
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
