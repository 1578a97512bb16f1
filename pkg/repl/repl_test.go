package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/ormasoftchile/ucrepl/pkg/prompt"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// --- fakes ---

type fakeUseCase struct {
	doc       usecase.Doc
	schema    *usecase.Schema
	allow     bool
	authErr   error
	result    usecase.Result
	runErr    error
	runs      int
	docCalls  int
	gotAnswer *usecase.Answers
	gotIdent  usecase.Identity
	onRun     func()
}

func (f *fakeUseCase) Doc() usecase.Doc {
	f.docCalls++
	return f.doc
}
func (f *fakeUseCase) RequestSchema() *usecase.Schema { return f.schema }
func (f *fakeUseCase) Authorize(_ context.Context, id usecase.Identity) (bool, error) {
	f.gotIdent = id
	return f.allow, f.authErr
}
func (f *fakeUseCase) Run(_ context.Context, a *usecase.Answers) (usecase.Result, error) {
	f.runs++
	f.gotAnswer = a
	if f.onRun != nil {
		f.onRun()
	}
	return f.result, f.runErr
}

type fakeMenu struct {
	picks   []int
	err     error
	calls   int
	labels  []string
	wrap    bool
	message string
	cancel  context.CancelFunc
	// out receives the one-line record the terminal menu leaves behind.
	out io.Writer
}

func (m *fakeMenu) Choose(_ context.Context, message string, labels []string, wrap bool) (int, error) {
	m.calls++
	m.labels = labels
	m.wrap = wrap
	m.message = message
	if len(m.picks) == 0 {
		if m.cancel != nil {
			m.cancel()
			return 0, context.Canceled
		}
		return 0, m.err
	}
	p := m.picks[0]
	m.picks = m.picks[1:]
	if m.out != nil && p >= 0 && p < len(labels) {
		fmt.Fprintf(m.out, "? %s %s\n", message, labels[p])
	}
	return p, nil
}

type markTheme struct{ PlainTheme }

func (markTheme) Success(s string) string { return "<ok>" + s + "</ok>" }
func (markTheme) Failure(s string) string { return "<fail>" + s + "</fail>" }
func (markTheme) Denied(s string) string  { return "<denied>" + s + "</denied>" }

func chargeCard() *fakeUseCase {
	return &fakeUseCase{
		doc: usecase.Doc{Description: "Charge card", Steps: []usecase.Step{
			usecase.IfElse("Validate", usecase.Simple("amount>0"), usecase.Simple("proceed"), usecase.Simple("reject")),
		}},
		schema: usecase.NewSchema(
			usecase.Param{Name: "amount", Type: usecase.TypeDescriptor{Name: "Number"}},
			usecase.Param{Name: "note", Type: usecase.TypeDescriptor{Name: "String"}},
		),
		allow:  true,
		result: usecase.Ok(map[string]any{"value": 42}),
	}
}

func scripted() prompt.Collector {
	return &prompt.Scripted{Values: map[string]string{"amount": "10", "note": "lunch"}}
}

// --- Orchestrator ---

func TestExecute_AuthorizedRunsOnceWithAnswers(t *testing.T) {
	uc := chargeCard()
	var out bytes.Buffer
	o := &Orchestrator{Collector: scripted(), Output: &out, Theme: markTheme{}}

	outcome, err := o.Execute(context.Background(), uc, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeSucceeded {
		t.Errorf("expected succeeded, got %s", outcome)
	}
	if uc.runs != 1 {
		t.Fatalf("expected exactly one run, got %d", uc.runs)
	}
	if uc.gotIdent != "alice" {
		t.Errorf("identity not passed through: %v", uc.gotIdent)
	}
	if v, _ := uc.gotAnswer.Get("amount"); v != 10.0 {
		t.Errorf("amount = %v", v)
	}
	if v, _ := uc.gotAnswer.Get("note"); v != "lunch" {
		t.Errorf("note = %v", v)
	}

	s := out.String()
	for _, want := range []string{MsgInformParams, MsgParams, `"amount": 10`, `"note": "lunch"`, MsgResult, "<ok>", `"value": 42`, `"isOk": true`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if strings.Index(s, `"amount"`) > strings.Index(s, `"note"`) {
		t.Error("params dump should follow schema order")
	}
}

func TestExecute_DeniedNeverRuns(t *testing.T) {
	uc := chargeCard()
	uc.allow = false
	var out bytes.Buffer
	o := &Orchestrator{Collector: scripted(), Output: &out, Theme: markTheme{}}

	outcome, err := o.Execute(context.Background(), uc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeDenied {
		t.Errorf("expected denied, got %s", outcome)
	}
	if uc.runs != 0 {
		t.Fatalf("run must not be invoked when denied, got %d", uc.runs)
	}
	if !strings.Contains(out.String(), "<denied>Access denied</denied>") {
		t.Errorf("missing access denied notice:\n%s", out.String())
	}
	if strings.Contains(out.String(), MsgResult) {
		t.Error("no result should be shown when denied")
	}
}

func TestExecute_FailureShowsFullPayload(t *testing.T) {
	uc := chargeCard()
	uc.result = usecase.Fail(map[string]any{"error": "x", "code": 7})
	var out bytes.Buffer
	o := &Orchestrator{Collector: scripted(), Output: &out, Theme: markTheme{}}

	outcome, err := o.Execute(context.Background(), uc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeFailed {
		t.Errorf("expected failed, got %s", outcome)
	}
	s := out.String()
	for _, want := range []string{"<fail>", `"error": "x"`, `"code": 7`, `"isOk": false`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "<ok>") {
		t.Error("failure rendered in success style")
	}
}

func TestExecute_AuthorizeErrorPropagates(t *testing.T) {
	uc := chargeCard()
	boom := errors.New("policy store down")
	uc.authErr = boom
	o := &Orchestrator{Collector: scripted(), Output: &bytes.Buffer{}}
	_, err := o.Execute(context.Background(), uc, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected authorize error, got %v", err)
	}
	if uc.runs != 0 {
		t.Error("run must not be invoked after an authorize error")
	}
}

func TestExecute_RunErrorPropagates(t *testing.T) {
	uc := chargeCard()
	boom := errors.New("db timeout")
	uc.runErr = boom
	o := &Orchestrator{Collector: scripted(), Output: &bytes.Buffer{}}
	outcome, err := o.Execute(context.Background(), uc, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected run error, got %v", err)
	}
	if outcome != OutcomeAborted {
		t.Errorf("expected aborted, got %s", outcome)
	}
}

func TestExecute_CollectorErrorStopsBeforeAuthorize(t *testing.T) {
	uc := chargeCard()
	o := &Orchestrator{Collector: &prompt.Scripted{}, Output: &bytes.Buffer{}}
	if _, err := o.Execute(context.Background(), uc, "bob"); err == nil {
		t.Fatal("expected collector error")
	}
	if uc.gotIdent != nil || uc.runs != 0 {
		t.Error("authorize/run must not be reached when collection fails")
	}
}

// --- Selector ---

func TestChoices_LabelUsesGroupTag(t *testing.T) {
	uc := chargeCard()
	choices := Choices([]usecase.Entry{{Tags: map[string]string{"domain": "billing"}, UseCase: uc}}, "domain")
	if len(choices) != 1 || choices[0].Label != "billing - Charge card" {
		t.Fatalf("unexpected choices %+v", choices)
	}
	if uc.docCalls != 1 {
		t.Errorf("doc should be produced eagerly once, got %d", uc.docCalls)
	}
}

func TestChoices_MissingTag(t *testing.T) {
	choices := Choices([]usecase.Entry{{Tags: nil, UseCase: chargeCard()}}, "domain")
	if choices[0].Label != " - Charge card" {
		t.Errorf("unexpected label %q", choices[0].Label)
	}
}

func TestSelect_ReturnsChosenUseCase(t *testing.T) {
	a, b := chargeCard(), chargeCard()
	b.doc.Description = "Refund"
	menu := &fakeMenu{picks: []int{1}}
	sel := &Selector{Menu: menu}

	got, err := sel.Select(context.Background(), []usecase.Entry{
		{Tags: map[string]string{"domain": "billing"}, UseCase: a},
		{Tags: map[string]string{"domain": "billing"}, UseCase: b},
	}, "domain")
	if err != nil {
		t.Fatal(err)
	}
	if got != usecase.UseCase(b) {
		t.Error("expected the second use case")
	}
	if menu.wrap {
		t.Error("menu must be configured without wrap-around")
	}
	if menu.message != MsgChoose {
		t.Errorf("unexpected message %q", menu.message)
	}
	if menu.labels[1] != "billing - Refund" {
		t.Errorf("unexpected label %q", menu.labels[1])
	}
}

func TestSelect_OutOfRange(t *testing.T) {
	sel := &Selector{Menu: &fakeMenu{picks: []int{3}}}
	if _, err := sel.Select(context.Background(), nil, "domain"); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

// --- Session ---

func TestSession_LoopsUntilInterrupted(t *testing.T) {
	uc := chargeCard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	menu := &fakeMenu{picks: []int{0, 0}, cancel: cancel}
	var out bytes.Buffer
	s := &Session{
		Entries:   []usecase.Entry{{Tags: map[string]string{"domain": "billing"}, UseCase: uc}},
		Identity:  "ops",
		GroupBy:   "domain",
		Menu:      menu,
		Collector: scripted(),
		Output:    &out,
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("interrupt should end the session cleanly, got %v", err)
	}
	if uc.runs != 2 {
		t.Errorf("expected 2 runs, got %d", uc.runs)
	}
	if menu.calls != 3 {
		t.Errorf("expected 3 menu prompts, got %d", menu.calls)
	}
	text := out.String()
	if !strings.Contains(text, BannerTitle) || !strings.Contains(text, BannerHint) {
		t.Error("missing banner")
	}
	if strings.Count(text, "Charge card use case will execute the following steps:") != 2 {
		t.Errorf("expected plan rendered per iteration:\n%s", text)
	}
	if !strings.Contains(text, "     if - amount>0") {
		t.Errorf("plan not rendered:\n%s", text)
	}
}

func TestSession_OneBlankLineBetweenIterations(t *testing.T) {
	uc := chargeCard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out bytes.Buffer
	s := &Session{
		Entries:   []usecase.Entry{{Tags: map[string]string{"domain": "billing"}, UseCase: uc}},
		GroupBy:   "domain",
		Menu:      &fakeMenu{picks: []int{0, 0}, cancel: cancel, out: &out},
		Collector: scripted(),
		Output:    &out,
	}
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}

	text := out.String()
	menuLine := "? " + MsgChoose + " billing - Charge card\n"
	if strings.Count(text, menuLine) != 2 {
		t.Fatalf("expected two menu records:\n%s", text)
	}
	// Result dump of the first iteration, separator, second menu record,
	// then the plan, which opens with its own blank line.
	first := strings.Index(text, MsgResult)
	second := strings.Index(text[first:], menuLine) + first
	between := text[first:second]
	if !strings.HasSuffix(between, "}\n\n") || strings.HasSuffix(between, "}\n\n\n") {
		t.Errorf("expected exactly one blank line after the result, got %q", between)
	}
	if !strings.HasPrefix(text[second+len(menuLine):], "\nCharge card use case will execute the following steps:") {
		t.Errorf("plan should follow the menu after one blank line:\n%s", text[second:])
	}
	if strings.Contains(text, "\n\n\n") {
		t.Errorf("found more than one consecutive blank line:\n%q", text)
	}
}

func TestSession_NoSeparatorAfterFailedIteration(t *testing.T) {
	uc := chargeCard()
	uc.runErr = errors.New("exploded")
	var out bytes.Buffer
	s := &Session{
		Entries:   []usecase.Entry{{UseCase: uc}},
		Menu:      &fakeMenu{picks: []int{0, 0}},
		Collector: scripted(),
		Output:    &out,
	}
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected run error")
	}
	if strings.HasSuffix(out.String(), "\n\n") {
		t.Errorf("no separator expected after a failed iteration, got %q", out.String())
	}
}

func TestSession_FailureDuringCancellationSurfaces(t *testing.T) {
	uc := chargeCard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boom := errors.New("ledger unavailable")
	uc.runErr = boom
	uc.onRun = cancel
	s := &Session{
		Entries:   []usecase.Entry{{UseCase: uc}},
		Menu:      &fakeMenu{picks: []int{0}},
		Collector: scripted(),
		Output:    &bytes.Buffer{},
	}
	if err := s.Run(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected run error to surface, got %v", err)
	}
}

func TestSession_CancelledContextStopsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	menu := &fakeMenu{}
	s := &Session{Menu: menu, Collector: scripted(), Output: &bytes.Buffer{}}
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if menu.calls != 0 {
		t.Error("menu should not be shown after cancellation")
	}
}

func TestSession_WrappedCancelIsInterrupt(t *testing.T) {
	uc := chargeCard()
	collector := &abortingCollector{}
	s := &Session{
		Entries:   []usecase.Entry{{UseCase: uc}},
		Menu:      &fakeMenu{picks: []int{0}},
		Collector: collector,
		Output:    &bytes.Buffer{},
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if uc.runs != 0 {
		t.Error("run should not happen after an aborted prompt")
	}
}

type abortingCollector struct{}

func (abortingCollector) Collect(context.Context, []prompt.Spec) (*usecase.Answers, error) {
	return nil, &wrapErr{context.Canceled}
}

type wrapErr struct{ err error }

func (w *wrapErr) Error() string { return "prompt aborted: " + w.err.Error() }
func (w *wrapErr) Unwrap() error { return w.err }

func TestSession_UnexpectedErrorSurfaces(t *testing.T) {
	uc := chargeCard()
	boom := errors.New("exploded")
	uc.runErr = boom
	s := &Session{
		Entries:   []usecase.Entry{{UseCase: uc}},
		Menu:      &fakeMenu{picks: []int{0, 0}},
		Collector: scripted(),
		Output:    &bytes.Buffer{},
	}
	if err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected run error to surface, got %v", err)
	}
	if uc.runs != 1 {
		t.Errorf("no retry expected, got %d runs", uc.runs)
	}
}

func TestSession_DeniedContinuesLoop(t *testing.T) {
	uc := chargeCard()
	uc.allow = false
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &Session{
		Entries:   []usecase.Entry{{UseCase: uc}},
		Menu:      &fakeMenu{picks: []int{0, 0}, cancel: cancel},
		Collector: scripted(),
		Output:    &bytes.Buffer{},
	}
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if uc.runs != 0 {
		t.Error("denied use case must never run")
	}
}
