// Package render turns a use case's documented plan into readable output:
// an indented step tree for the terminal, plus Markdown and Mermaid exports.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// Indent is one nesting level.
const Indent = "  "

// HeaderSuffix follows the use case description on the header line.
const HeaderSuffix = " use case will execute the following steps:"

// LineKind classifies a rendered line.
type LineKind int

const (
	LineHeader LineKind = iota
	LineStep
	LineBranch
)

// Line is one rendered line of a plan.
type Line struct {
	Kind  LineKind
	Level int
	// Marker is "-" for steps and "if -", "then -" or "else -" for branches.
	Marker string
	Text   string
}

// String renders the line without styling.
func (l Line) String() string {
	return l.Render(Plain{})
}

// Render renders the line through a styler.
func (l Line) Render(s Styler) string {
	if l.Kind == LineHeader {
		return s.Header(l.Text) + HeaderSuffix
	}
	return strings.Repeat(Indent, l.Level) + " " + s.Marker(l.Marker) + " " + l.Text
}

// Styler decorates the cosmetic parts of a plan. Styling must not change
// the information content.
type Styler interface {
	Header(description string) string
	Marker(marker string) string
}

// Plain is the identity Styler.
type Plain struct{}

func (Plain) Header(s string) string { return s }
func (Plain) Marker(s string) string { return s }

// Lines renders doc as a depth-first, pre-order sequence of lines. The
// first line is the header; top-level steps start at level 1.
func Lines(doc usecase.Doc) []Line {
	lines := []Line{{Kind: LineHeader, Text: doc.Description}}
	for i := range doc.Steps {
		lines = appendStep(lines, &doc.Steps[i], 1, true)
	}
	return lines
}

// appendStep renders step at level. When emit is false the step's own line
// has already been written (as a branch label) and only its nested content
// is unfolded.
func appendStep(lines []Line, step *usecase.Step, level int, emit bool) []Line {
	if emit {
		lines = append(lines, Line{Kind: LineStep, Level: level, Marker: "-", Text: step.Description})
	}
	if step.Kind == usecase.StepConditional {
		return appendConditional(lines, step, level+1)
	}
	for i := range step.Steps {
		lines = appendStep(lines, &step.Steps[i], level+1, true)
	}
	return lines
}

// appendConditional writes the if/then/else labels at level and unfolds
// each branch body at level+1, so a body's own content lands two levels
// below its label.
func appendConditional(lines []Line, step *usecase.Step, level int) []Line {
	for _, br := range step.Branches() {
		if br.Step == nil {
			continue
		}
		lines = append(lines, Line{Kind: LineBranch, Level: level, Marker: br.Label + " -", Text: br.Step.Description})
		lines = appendStep(lines, br.Step, level+1, false)
	}
	return lines
}

// Write prints the plan of doc to w, preceded by a blank line.
func Write(w io.Writer, doc usecase.Doc, s Styler) error {
	if s == nil {
		s = Plain{}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, l := range Lines(doc) {
		if _, err := fmt.Fprintln(w, l.Render(s)); err != nil {
			return err
		}
	}
	return nil
}

// Text returns the unstyled plan as a single string.
func Text(doc usecase.Doc) string {
	var b strings.Builder
	for _, l := range Lines(doc) {
		b.WriteString(l.String())
		b.WriteString("\n")
	}
	return b.String()
}
