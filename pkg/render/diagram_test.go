package render

import (
	"strings"
	"testing"

	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

func chargeDoc() usecase.Doc {
	return usecase.Doc{Description: "Charge card", Steps: []usecase.Step{
		usecase.Simple("Load customer", usecase.Simple("Fetch profile")),
		validateStep(),
		usecase.Simple("Emit receipt"),
	}}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	if _, err := Generate(chargeDoc(), Format("svg")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestGenerate_TextMatchesLines(t *testing.T) {
	out, err := Generate(chargeDoc(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if out != Text(chargeDoc()) {
		t.Errorf("text format should equal Text()")
	}
}

func TestMarkdown_NestedList(t *testing.T) {
	out := Markdown(chargeDoc())
	if !strings.HasPrefix(out, "## Charge card\n") {
		t.Errorf("missing heading, got:\n%s", out)
	}
	for _, want := range []string{
		"- Load customer\n",
		"  - Fetch profile\n",
		"- Validate\n",
		"  - **if** amount>0\n",
		"  - **then** proceed\n",
		"  - **else** reject\n",
		"- Emit receipt\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMarkdown_BranchBodyNestsUnderLabel(t *testing.T) {
	doc := usecase.Doc{Description: "Refund", Steps: []usecase.Step{
		usecase.IfElse("Check",
			usecase.Simple("eligible"),
			usecase.Simple("refund", usecase.Simple("credit card")),
			usecase.Simple("reject"),
		),
	}}
	out := Markdown(doc)
	for _, want := range []string{
		"  - **then** refund\n",
		"    - credit card\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMermaid_Flowchart(t *testing.T) {
	out := Mermaid(chargeDoc())
	if !strings.HasPrefix(out, "flowchart TD\n") {
		t.Error("missing flowchart header")
	}
	for _, want := range []string{
		`START(["Charge card"])`,
		`s1["Load customer"]`,
		`s1 -.->|"steps"| s2`,
		`s3["Validate"]`,
		`s4{"amount>0"}`,
		`s3 -->|"if"| s4`,
		`s4 -->|"then"| s5`,
		`s4 -->|"else"| s6`,
		"START --> s1",
		"s1 --> s3",
		"s3 --> s7",
		"s7 --> END",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMermaid_EscapesQuotes(t *testing.T) {
	doc := usecase.Doc{Description: "d", Steps: []usecase.Step{usecase.Simple(`say "hi"`)}}
	out := Mermaid(doc)
	if !strings.Contains(out, "#quot;hi#quot;") {
		t.Errorf("quotes not escaped:\n%s", out)
	}
}
