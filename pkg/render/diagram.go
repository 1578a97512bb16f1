package render

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-runewidth"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// Format represents a plan output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatMermaid  Format = "mermaid"
)

// maxLabelWidth bounds Mermaid node labels.
const maxLabelWidth = 48

// Generate renders doc in the requested format.
func Generate(doc usecase.Doc, format Format) (string, error) {
	switch format {
	case FormatText, "":
		return Text(doc), nil
	case FormatMarkdown:
		return Markdown(doc), nil
	case FormatMermaid:
		return Mermaid(doc), nil
	default:
		return "", errors.Newf("unsupported plan format: %s", format)
	}
}

// --- Markdown ---

// Markdown renders doc as a heading followed by a nested bullet list.
// Branch labels are emphasised. List nesting deepens by at most one level
// per item, so branch bodies sit directly under their label.
func Markdown(doc usecase.Doc) string {
	var b strings.Builder
	lines := Lines(doc)
	b.WriteString("## " + lines[0].Text + "\n\n")
	b.WriteString("Steps to be executed:\n\n")
	depth := 0
	for _, l := range lines[1:] {
		depth = min(l.Level, depth+1)
		b.WriteString(strings.Repeat(Indent, depth-1))
		b.WriteString("- ")
		if l.Kind == LineBranch {
			b.WriteString("**" + strings.TrimSuffix(l.Marker, " -") + "** ")
		}
		b.WriteString(escMarkdown(l.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func escMarkdown(s string) string {
	r := strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`")
	return r.Replace(s)
}

// --- Mermaid flowchart ---

// Mermaid renders doc as a top-down flowchart. Sub-plans hang off their
// parent with a "steps" edge; conditionals become a decision node whose
// then/else edges lead to the branch bodies.
func Mermaid(doc usecase.Doc) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	g := &mermaidGraph{b: &b}
	b.WriteString(fmt.Sprintf("    START([%q])\n", escMermaid(clip(doc.Description))))

	prev := "START"
	for i := range doc.Steps {
		id := g.writeStep(&doc.Steps[i])
		b.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		prev = id
	}
	b.WriteString("    END([Done])\n")
	b.WriteString(fmt.Sprintf("    %s --> END\n", prev))
	return b.String()
}

type mermaidGraph struct {
	b    *strings.Builder
	next int
}

func (g *mermaidGraph) newID() string {
	g.next++
	return fmt.Sprintf("s%d", g.next)
}

// writeStep emits the node for step and everything below it, returning
// the node id.
func (g *mermaidGraph) writeStep(step *usecase.Step) string {
	id := g.newID()
	if step.Kind == usecase.StepConditional {
		g.b.WriteString(fmt.Sprintf("    %s[%q]\n", id, escMermaid(clip(step.Description))))
		cond := g.newID()
		condLabel := ""
		if step.If != nil {
			condLabel = step.If.Description
		}
		g.b.WriteString(fmt.Sprintf("    %s{%q}\n", cond, escMermaid(clip(condLabel))))
		g.b.WriteString(fmt.Sprintf("    %s -->|\"if\"| %s\n", id, cond))
		if step.If != nil {
			g.writeChildren(cond, step.If.Steps)
		}
		if step.Then != nil {
			then := g.writeStep(step.Then)
			g.b.WriteString(fmt.Sprintf("    %s -->|\"then\"| %s\n", cond, then))
		}
		if step.Else != nil {
			els := g.writeStep(step.Else)
			g.b.WriteString(fmt.Sprintf("    %s -->|\"else\"| %s\n", cond, els))
		}
		g.b.WriteString(fmt.Sprintf("    style %s fill:#1a3a4a,stroke:#0af\n", cond))
		return id
	}
	g.b.WriteString(fmt.Sprintf("    %s[%q]\n", id, escMermaid(clip(step.Description))))
	g.writeChildren(id, step.Steps)
	return id
}

func (g *mermaidGraph) writeChildren(parent string, children []usecase.Step) {
	prev := ""
	for i := range children {
		child := g.writeStep(&children[i])
		if prev == "" {
			g.b.WriteString(fmt.Sprintf("    %s -.->|\"steps\"| %s\n", parent, child))
		} else {
			g.b.WriteString(fmt.Sprintf("    %s --> %s\n", prev, child))
		}
		prev = child
	}
}

func escMermaid(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, `'`, "#apos;")
	return s
}

func clip(s string) string {
	return runewidth.Truncate(s, maxLabelWidth, "...")
}
