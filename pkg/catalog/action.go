package catalog

import (
	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// defaultFailure is reported when fail_when matches and no error text is
// declared.
const defaultFailure = "use case failed"

type compiledAction struct {
	action   *Action
	failWhen *vm.Program
	result   *vm.Program
}

func compileAction(a *Action) (*compiledAction, error) {
	ca := &compiledAction{action: a}
	if a == nil {
		return ca, nil
	}
	if a.FailWhen != "" {
		prog, err := expr.Compile(a.FailWhen, expr.AsBool())
		if err != nil {
			return nil, errors.Wrapf(err, "compile fail_when %q", a.FailWhen)
		}
		ca.failWhen = prog
	}
	if a.Result != "" {
		prog, err := expr.Compile(a.Result)
		if err != nil {
			return nil, errors.Wrapf(err, "compile result %q", a.Result)
		}
		ca.result = prog
	}
	return ca, nil
}

// actionEnv exposes every answer by name plus the full set as `answers`.
func actionEnv(answers *usecase.Answers) map[string]any {
	all := answers.Map()
	env := make(map[string]any, len(all)+1)
	for k, v := range all {
		env[k] = v
	}
	env["answers"] = all
	return env
}

// Run evaluates the action. A true fail_when yields a failed Result; the
// result expression shapes the success payload. Evaluation errors are
// returned, not folded into the Result.
func (ca *compiledAction) Run(answers *usecase.Answers) (usecase.Result, error) {
	env := actionEnv(answers)

	if ca.failWhen != nil {
		out, err := expr.Run(ca.failWhen, env)
		if err != nil {
			return usecase.Result{}, errors.Wrapf(err, "eval fail_when %q", ca.action.FailWhen)
		}
		if failed, _ := out.(bool); failed {
			msg := ca.action.Error
			if msg == "" {
				msg = defaultFailure
			}
			return usecase.Fail(map[string]any{"error": msg}), nil
		}
	}

	if ca.result == nil {
		return usecase.Ok(map[string]any{"answers": answers.Map()}), nil
	}
	out, err := expr.Run(ca.result, env)
	if err != nil {
		return usecase.Result{}, errors.Wrapf(err, "eval result %q", ca.action.Result)
	}
	if payload, ok := out.(map[string]any); ok {
		return usecase.Ok(payload), nil
	}
	return usecase.Ok(map[string]any{"value": out}), nil
}
