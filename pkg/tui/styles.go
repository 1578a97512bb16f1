// Package tui holds the terminal widgets of the REPL: the lipgloss theme,
// the bubbletea selection menu and the glamour markdown renderer.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ormasoftchile/ucrepl/pkg/repl"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorBlue   = lipgloss.Color("39")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

// Banner gradient endpoints.
var (
	bannerFrom = colorful.Color{R: 1, G: 0.84, B: 0} // gold
	bannerTo   = colorful.Color{R: 1, G: 1, B: 1}
)

// --- Plan styles ---

var (
	markerStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Underline(true)
)

// --- Execution styles ---

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	paramsStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	deniedStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	failureStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)

// --- Menu styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Theme is the colored repl.Theme.
type Theme struct{}

var _ repl.Theme = Theme{}

func (Theme) Header(s string) string  { return descriptionStyle.Render(s) }
func (Theme) Marker(s string) string  { return markerStyle.Render(s) }
func (Theme) Banner(s string) string  { return Gradient(s, bannerFrom, bannerTo) }
func (Theme) Hint(s string) string    { return hintStyle.Render(s) }
func (Theme) Section(s string) string { return sectionStyle.Render(s) }
func (Theme) Params(s string) string  { return paramsStyle.Render(s) }
func (Theme) Denied(s string) string  { return deniedStyle.Render(s) }
func (Theme) Success(s string) string { return successStyle.Render(s) }
func (Theme) Failure(s string) string { return failureStyle.Render(s) }

// ThemeFor returns the colored theme, or the plain one when color is off.
func ThemeFor(noColor bool) repl.Theme {
	if noColor {
		return repl.PlainTheme{}
	}
	return Theme{}
}

// Gradient colors each rune of s along a Luv blend from one color to the
// other, in bold.
func Gradient(s string, from, to colorful.Color) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := from.BlendLuv(to, t).Clamped()
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return b.String()
}
