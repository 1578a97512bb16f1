package tui

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/ucrepl/pkg/repl"
)

// ErrNoChoices is returned when the menu is asked to choose from nothing.
var ErrNoChoices = errors.New("no use cases to choose from")

// defaultWidth is used until the terminal reports its size.
const defaultWidth = 80

// menuModel is a single-select list.
type menuModel struct {
	title  string
	labels []string
	wrap   bool

	cursor    int
	chosen    bool
	cancelled bool

	width int
}

func newMenuModel(title string, labels []string, wrap bool) menuModel {
	return menuModel{title: title, labels: labels, wrap: wrap, width: defaultWidth}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m menuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(m.labels) - 1

	switch {
	case key.Matches(msg, menuKeys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(msg, menuKeys.Up):
		switch {
		case m.cursor > 0:
			m.cursor--
		case m.wrap:
			m.cursor = last
		}
	case key.Matches(msg, menuKeys.Down):
		switch {
		case m.cursor < last:
			m.cursor++
		case m.wrap:
			m.cursor = 0
		}
	case key.Matches(msg, menuKeys.Home):
		m.cursor = 0
	case key.Matches(msg, menuKeys.End):
		m.cursor = last
	case key.Matches(msg, menuKeys.Choose):
		m.chosen = true
		return m, tea.Quit
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if idx := int(s[0] - '1'); idx <= last {
				m.cursor = idx
				m.chosen = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.chosen || m.cancelled {
		// Leave a one-line record of the answer in the scrollback.
		if m.chosen {
			return titleStyle.Render("? "+m.title) + " " + cursorStyle.Render(m.labels[m.cursor]) + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("? " + m.title))
	b.WriteString("\n")

	maxW := m.width - 4
	if maxW < 10 {
		maxW = 10
	}
	for i, label := range m.labels {
		b.WriteString(m.renderItem(i, runewidth.Truncate(label, maxW, "…")))
		b.WriteString("\n")
	}
	b.WriteString(keyBarText())
	b.WriteString("\n")
	return b.String()
}

func (m menuModel) renderItem(idx int, label string) string {
	if idx == m.cursor {
		return cursorStyle.Render("> " + label)
	}
	return "  " + label
}

// Menu implements repl.Menu on a bubbletea program.
type Menu struct {
	// Input and Output default to the terminal when nil.
	Input  io.Reader
	Output io.Writer
}

var _ repl.Menu = (*Menu)(nil)

// Choose runs the menu until the operator picks a label or cancels. Cancel
// (esc, ^C, ^D) and context cancellation return an error wrapping
// context.Canceled. An empty label list returns ErrNoChoices without
// drawing anything.
func (mn *Menu) Choose(ctx context.Context, message string, labels []string, wrap bool) (int, error) {
	if len(labels) == 0 {
		return -1, ErrNoChoices
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if mn.Input != nil {
		opts = append(opts, tea.WithInput(mn.Input))
	}
	if mn.Output != nil {
		opts = append(opts, tea.WithOutput(mn.Output))
	}

	final, err := tea.NewProgram(newMenuModel(message, labels, wrap), opts...).Run()
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return -1, errors.Wrap(context.Canceled, "menu interrupted")
		}
		return -1, errors.Wrap(err, "run menu")
	}
	return menuResult(final)
}

func menuResult(final tea.Model) (int, error) {
	m, ok := final.(menuModel)
	if !ok {
		return -1, errors.Newf("unexpected menu model %T", final)
	}
	if m.cancelled || !m.chosen {
		return -1, errors.Wrap(context.Canceled, "menu cancelled")
	}
	return m.cursor, nil
}
