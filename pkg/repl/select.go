package repl

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// MsgChoose is the menu prompt.
const MsgChoose = "Choose a use case"

// Menu is the single-select widget. It returns the index of the chosen
// label. With wrap false the cursor stops at both ends of the list. What
// an empty list does is up to the implementation.
type Menu interface {
	Choose(ctx context.Context, message string, labels []string, wrap bool) (int, error)
}

// Choice is one menu row.
type Choice struct {
	Label string
	Value usecase.UseCase
}

// Choices builds the menu rows for entries. Each use case's Doc is
// produced here, eagerly, to obtain its description.
func Choices(entries []usecase.Entry, groupBy string) []Choice {
	choices := make([]Choice, 0, len(entries))
	for _, e := range entries {
		choices = append(choices, Choice{
			Label: e.Tags[groupBy] + " - " + e.UseCase.Doc().Description,
			Value: e.UseCase,
		})
	}
	return choices
}

// Selector asks the operator to pick one use case.
type Selector struct {
	Menu Menu
}

// Select shows the labelled entries and returns the chosen use case.
func (s *Selector) Select(ctx context.Context, entries []usecase.Entry, groupBy string) (usecase.UseCase, error) {
	choices := Choices(entries, groupBy)
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	idx, err := s.Menu.Choose(ctx, MsgChoose, labels, false)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(choices) {
		return nil, errors.Newf("menu returned index %d for %d choices", idx, len(choices))
	}
	return choices[idx].Value, nil
}
