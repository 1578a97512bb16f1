// Package repl drives the interactive use-case loop: choose a use case,
// show its plan, collect its inputs, gate on authorization and run it.
package repl

import "github.com/ormasoftchile/ucrepl/pkg/render"

// Theme styles REPL output. Implementations only decorate text; the
// information shown is the same with or without styling.
type Theme interface {
	render.Styler
	Banner(title string) string
	Hint(s string) string
	Section(title string) string
	Params(dump string) string
	Denied(s string) string
	Success(dump string) string
	Failure(dump string) string
}

// PlainTheme prints everything unstyled.
type PlainTheme struct {
	render.Plain
}

func (PlainTheme) Banner(s string) string  { return s }
func (PlainTheme) Hint(s string) string    { return s }
func (PlainTheme) Section(s string) string { return s }
func (PlainTheme) Params(s string) string  { return s }
func (PlainTheme) Denied(s string) string  { return s }
func (PlainTheme) Success(s string) string { return s }
func (PlainTheme) Failure(s string) string { return s }
