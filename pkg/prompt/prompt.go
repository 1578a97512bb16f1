// Package prompt derives interactive prompts from a request schema and
// collects typed answers for them.
package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// Kind is the prompt widget used for a parameter.
type Kind int

const (
	// KindText is free-text entry. It is the default for unknown types.
	KindText Kind = iota
	// KindNumber is numeric entry.
	KindNumber
	// KindConfirm is a yes/no confirmation.
	KindConfirm
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindConfirm:
		return "confirm"
	default:
		return "input"
	}
}

// Spec describes one prompt.
type Spec struct {
	Name  string
	Kind  Kind
	Label string
}

// KindFor maps a type descriptor name to a prompt kind. Names other than
// Number and Boolean, including empty ones, fall back to text entry.
func KindFor(typeName string) Kind {
	switch typeName {
	case usecase.TypeNumber:
		return KindNumber
	case usecase.TypeBoolean:
		return KindConfirm
	default:
		return KindText
	}
}

// Derive returns one prompt per schema entry, in schema order.
func Derive(schema *usecase.Schema) []Spec {
	params := schema.Params()
	specs := make([]Spec, 0, len(params))
	for _, p := range params {
		specs = append(specs, Spec{
			Name:  p.Name,
			Kind:  KindFor(p.Type.Name),
			Label: fmt.Sprintf("%s (%s)", p.Name, p.Type.Name),
		})
	}
	return specs
}

// Collector is the interactive prompt widget: it asks every spec in order
// and returns the answers keyed by spec name.
type Collector interface {
	Collect(ctx context.Context, specs []Spec) (*usecase.Answers, error)
}

// ErrInvalidNumber is returned by Parse for non-numeric input to a number
// prompt.
var ErrInvalidNumber = errors.New("not a number")

// ErrInvalidConfirm is returned by Parse for unrecognised yes/no input.
var ErrInvalidConfirm = errors.New("expected y or n")

// Parse converts raw input into the value type of kind. Confirm prompts
// default to false on empty input.
func Parse(kind Kind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidNumber, "%q", raw)
		}
		return n, nil
	case KindConfirm:
		switch strings.ToLower(raw) {
		case "y", "yes", "true":
			return true, nil
		case "", "n", "no", "false":
			return false, nil
		default:
			return nil, errors.Wrapf(ErrInvalidConfirm, "%q", raw)
		}
	default:
		return raw, nil
	}
}
