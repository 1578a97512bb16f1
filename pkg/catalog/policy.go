package catalog

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Decision carries the authorization evaluation result for a use case.
type Decision struct {
	Action      string `json:"action"`
	MatchedRule string `json:"matched_rule,omitempty"`
}

// Allowed reports whether the decision lets the use case run.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// compiledPolicy is a Policy with its rule expressions compiled.
type compiledPolicy struct {
	policy   *Policy
	programs []*vm.Program // nil entry: rule without a condition
}

func compilePolicy(p *Policy) (*compiledPolicy, error) {
	cp := &compiledPolicy{policy: p}
	if p == nil {
		return cp, nil
	}
	for i, rule := range p.Rules {
		if rule.When == "" {
			cp.programs = append(cp.programs, nil)
			continue
		}
		prog, err := expr.Compile(rule.When, expr.AsBool())
		if err != nil {
			return nil, errors.Wrapf(err, "compile rule %d condition %q", i, rule.When)
		}
		cp.programs = append(cp.programs, prog)
	}
	return cp, nil
}

// Evaluate walks the rules in order; the first matching rule decides.
// Without a match the default applies, and an empty default denies.
// A use case without a policy is open to everyone.
func (cp *compiledPolicy) Evaluate(env map[string]any) (Decision, error) {
	if cp.policy == nil {
		return Decision{Action: ActionAllow, MatchedRule: "no policy"}, nil
	}
	for i, rule := range cp.policy.Rules {
		matched := true
		if prog := cp.programs[i]; prog != nil {
			out, err := expr.Run(prog, env)
			if err != nil {
				return Decision{}, errors.Wrapf(err, "eval rule %d condition %q", i, rule.When)
			}
			b, ok := out.(bool)
			if !ok {
				return Decision{}, errors.Newf("rule %d condition %q did not return bool (got %T: %v)", i, rule.When, out, out)
			}
			matched = b
		}
		if matched {
			return Decision{Action: rule.Action, MatchedRule: describeRule(i, rule)}, nil
		}
	}
	def := cp.policy.Default
	if def == "" {
		def = ActionDeny
	}
	return Decision{Action: def, MatchedRule: "default: " + def}, nil
}

func describeRule(i int, rule Rule) string {
	if rule.When == "" {
		return fmt.Sprintf("rule %d: always", i)
	}
	return fmt.Sprintf("rule %d: %s", i, rule.When)
}
