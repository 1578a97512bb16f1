package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// UseCase adapts a UseCaseDef to usecase.UseCase.
type UseCase struct {
	def    *UseCaseDef
	policy *compiledPolicy
	action *compiledAction
	logger *zap.Logger
}

var _ usecase.UseCase = (*UseCase)(nil)

// NewUseCase compiles the expressions of def.
func NewUseCase(def *UseCaseDef, logger *zap.Logger) (*UseCase, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy, err := compilePolicy(def.Authorize)
	if err != nil {
		return nil, errors.Wrapf(err, "use case %q", def.Name)
	}
	action, err := compileAction(def.Run)
	if err != nil {
		return nil, errors.Wrapf(err, "use case %q", def.Name)
	}
	return &UseCase{def: def, policy: policy, action: action, logger: logger.With(zap.String("usecase", def.Name))}, nil
}

// Name returns the catalog name of the use case.
func (u *UseCase) Name() string { return u.def.Name }

// Definition returns the underlying declaration.
func (u *UseCase) Definition() *UseCaseDef { return u.def }

// Doc builds a fresh plan from the declaration.
func (u *UseCase) Doc() usecase.Doc {
	steps := make([]usecase.Step, 0, len(u.def.Steps))
	for i := range u.def.Steps {
		steps = append(steps, u.def.Steps[i].ToStep())
	}
	return usecase.Doc{Description: u.def.Description, Steps: steps}
}

// RequestSchema returns the declared parameters in document order.
func (u *UseCase) RequestSchema() *usecase.Schema {
	return u.def.RequestSchema.Schema()
}

// Authorize evaluates the policy with the identity, use case name and tags
// in scope.
func (u *UseCase) Authorize(_ context.Context, identity usecase.Identity) (bool, error) {
	d, err := u.policy.Evaluate(map[string]any{
		"identity": identity,
		"usecase":  u.def.Name,
		"tags":     u.def.Tags,
	})
	if err != nil {
		return false, err
	}
	u.logger.Debug("policy decision", zap.String("action", d.Action), zap.String("rule", d.MatchedRule))
	return d.Allowed(), nil
}

// Run evaluates the declared action.
func (u *UseCase) Run(ctx context.Context, answers *usecase.Answers) (usecase.Result, error) {
	if err := ctx.Err(); err != nil {
		return usecase.Result{}, err
	}
	return u.action.Run(answers)
}

// Entries compiles every use case of c into catalog entries, in document
// order.
func (c *Catalog) Entries(logger *zap.Logger) ([]usecase.Entry, error) {
	entries := make([]usecase.Entry, 0, len(c.UseCases))
	for i := range c.UseCases {
		uc, err := NewUseCase(&c.UseCases[i], logger)
		if err != nil {
			return nil, err
		}
		entries = append(entries, usecase.Entry{Tags: c.UseCases[i].Tags, UseCase: uc})
	}
	return entries, nil
}
