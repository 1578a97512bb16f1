package prompt

import (
	"context"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// LineReader is the subset of *readline.Instance the collector needs.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// ReadlineCollector asks each prompt on its own line. Invalid numbers and
// confirmations are reported and asked again.
type ReadlineCollector struct {
	rl     LineReader
	output io.Writer
}

// NewReadlineCollector wraps an existing line reader.
func NewReadlineCollector(rl LineReader, output io.Writer) *ReadlineCollector {
	return &ReadlineCollector{rl: rl, output: output}
}

// NewTerminal opens a readline instance on the process terminal. The
// caller closes it.
func NewTerminal() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "? ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, errors.Wrap(err, "init readline")
	}
	return rl, nil
}

// Collect implements Collector. Ctrl-C and EOF abort with an error that
// wraps context.Canceled.
func (c *ReadlineCollector) Collect(ctx context.Context, specs []Spec) (*usecase.Answers, error) {
	answers := usecase.NewAnswers()
	for _, spec := range specs {
		v, err := c.ask(ctx, spec)
		if err != nil {
			return nil, err
		}
		answers.Set(spec.Name, v)
	}
	return answers, nil
}

func (c *ReadlineCollector) ask(ctx context.Context, spec Spec) (any, error) {
	c.rl.SetPrompt(promptText(spec))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil, errors.Wrapf(context.Canceled, "prompt %q aborted", spec.Name)
			}
			return nil, errors.Wrapf(err, "read %q", spec.Name)
		}
		v, err := Parse(spec.Kind, line)
		if err != nil {
			fmt.Fprintf(c.output, ">> %v\n", err)
			continue
		}
		return v, nil
	}
}

func promptText(spec Spec) string {
	if spec.Kind == KindConfirm {
		return "? " + spec.Label + " (y/N) "
	}
	return "? " + spec.Label + " "
}

// Scripted answers prompts from pre-supplied raw values, parsed with the
// same rules as interactive input. Names without a value are delegated to
// Fallback, or fail when Fallback is nil.
type Scripted struct {
	Values   map[string]string
	Fallback Collector
}

// Collect implements Collector.
func (s *Scripted) Collect(ctx context.Context, specs []Spec) (*usecase.Answers, error) {
	var missing []Spec
	for _, spec := range specs {
		if _, ok := s.Values[spec.Name]; !ok {
			missing = append(missing, spec)
		}
	}

	var asked *usecase.Answers
	if len(missing) > 0 {
		if s.Fallback == nil {
			return nil, errors.Newf("no answer supplied for %q", missing[0].Name)
		}
		var err error
		asked, err = s.Fallback.Collect(ctx, missing)
		if err != nil {
			return nil, err
		}
	}

	answers := usecase.NewAnswers()
	for _, spec := range specs {
		raw, ok := s.Values[spec.Name]
		if !ok {
			v, _ := asked.Get(spec.Name)
			answers.Set(spec.Name, v)
			continue
		}
		v, err := Parse(spec.Kind, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "answer for %q", spec.Name)
		}
		answers.Set(spec.Name, v)
	}
	return answers, nil
}
