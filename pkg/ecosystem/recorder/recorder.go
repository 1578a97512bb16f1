// Package recorder captures use case executions into a YAML transcript.
package recorder

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// CapturedRun records a single use case execution.
type CapturedRun struct {
	UseCase string         `yaml:"usecase"`
	At      time.Time      `yaml:"at"`
	Denied  bool           `yaml:"denied,omitempty"`
	Answers map[string]any `yaml:"answers,omitempty"`
	OK      bool           `yaml:"ok"`
	Payload map[string]any `yaml:"payload,omitempty"`
	Error   string         `yaml:"error,omitempty"`
}

// Transcript is the saved file layout.
type Transcript struct {
	Runs []CapturedRun `yaml:"runs"`
}

// Recorder wraps use cases and captures every denial and run.
type Recorder struct {
	mu      sync.Mutex
	runs    []CapturedRun
	secrets []string // env var names whose values should be redacted
	now     func() time.Time
}

// New creates an empty recorder.
func New() *Recorder {
	return &Recorder{now: time.Now}
}

// SetSecrets configures secret env var names whose values are redacted in captured output.
func (r *Recorder) SetSecrets(envVars []string) {
	r.secrets = envVars
}

// Runs returns a copy of the captured runs.
func (r *Recorder) Runs() []CapturedRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CapturedRun(nil), r.runs...)
}

// Wrap returns uc with recording attached, reported under name.
func (r *Recorder) Wrap(name string, uc usecase.UseCase) usecase.UseCase {
	return &recorded{UseCase: uc, name: name, rec: r}
}

// WrapEntries wraps every entry; names[i] labels entries[i].
func (r *Recorder) WrapEntries(entries []usecase.Entry, names []string) []usecase.Entry {
	out := make([]usecase.Entry, len(entries))
	for i, e := range entries {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		out[i] = usecase.Entry{Tags: e.Tags, UseCase: r.Wrap(name, e.UseCase)}
	}
	return out
}

// Save writes the transcript as YAML.
func (r *Recorder) Save(path string) error {
	data, err := yaml.Marshal(Transcript{Runs: r.Runs()})
	if err != nil {
		return errors.Wrap(err, "encode transcript")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write transcript")
	}
	return nil
}

func (r *Recorder) capture(run CapturedRun) {
	run.At = r.now()
	run.Answers = r.redactMap(run.Answers)
	run.Payload = r.redactMap(run.Payload)
	run.Error = r.redact(run.Error)
	r.mu.Lock()
	r.runs = append(r.runs, run)
	r.mu.Unlock()
}

// Redacted replaces secret values in captured strings.
const Redacted = "<REDACTED>"

// redact replaces secret values with Redacted.
func (r *Recorder) redact(s string) string {
	for _, envVar := range r.secrets {
		val := os.Getenv(envVar)
		if val != "" {
			s = strings.ReplaceAll(s, val, Redacted)
		}
	}
	return s
}

// redactMap redacts secret values in a map.
func (r *Recorder) redactMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = r.redact(s)
		} else {
			out[k] = v
		}
	}
	return out
}

// recorded decorates a use case. Doc and RequestSchema pass through.
type recorded struct {
	usecase.UseCase
	name string
	rec  *Recorder
}

func (u *recorded) Name() string { return u.name }

func (u *recorded) Authorize(ctx context.Context, identity usecase.Identity) (bool, error) {
	ok, err := u.UseCase.Authorize(ctx, identity)
	if err == nil && !ok {
		u.rec.capture(CapturedRun{UseCase: u.name, Denied: true})
	}
	return ok, err
}

func (u *recorded) Run(ctx context.Context, answers *usecase.Answers) (usecase.Result, error) {
	result, err := u.UseCase.Run(ctx, answers)
	run := CapturedRun{UseCase: u.name, Answers: answers.Map()}
	if err != nil {
		run.Error = err.Error()
	} else {
		run.OK = result.OK
		run.Payload = result.Payload
	}
	u.rec.capture(run)
	return result, err
}
