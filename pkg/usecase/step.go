package usecase

// Doc is the human-readable plan of a use case.
type Doc struct {
	Description string
	Steps       []Step
}

// StepKind discriminates the Step variants.
type StepKind int

const (
	// StepSimple is an action with an optional nested sub-plan.
	StepSimple StepKind = iota
	// StepConditional is an if/then/else with three sub-plans.
	StepConditional
)

// TagIfElse is the textual tag catalogs use for StepConditional.
const TagIfElse = "if else"

func (k StepKind) String() string {
	switch k {
	case StepConditional:
		return TagIfElse
	default:
		return "simple"
	}
}

// Step is one node of a plan. Kind decides which fields are meaningful:
// Steps for StepSimple, If/Then/Else for StepConditional.
type Step struct {
	Kind        StepKind
	Description string

	Steps []Step

	If   *Step
	Then *Step
	Else *Step
}

// Simple builds a simple step with optional children.
func Simple(description string, children ...Step) Step {
	return Step{Kind: StepSimple, Description: description, Steps: children}
}

// IfElse builds a conditional step.
func IfElse(description string, cond, then, els Step) Step {
	return Step{
		Kind:        StepConditional,
		Description: description,
		If:          &cond,
		Then:        &then,
		Else:        &els,
	}
}

// Branch is a labelled arm of a conditional step.
type Branch struct {
	Label string
	Step  *Step
}

// Branches returns the if/then/else arms in their fixed order. It returns
// nil for simple steps.
func (s Step) Branches() []Branch {
	if s.Kind != StepConditional {
		return nil
	}
	return []Branch{
		{Label: "if", Step: s.If},
		{Label: "then", Step: s.Then},
		{Label: "else", Step: s.Else},
	}
}

// Walk visits s and every step nested below it in pre-order, passing the
// nesting depth (0 for s).
func (s *Step) Walk(fn func(step *Step, depth int)) {
	s.walk(fn, 0)
}

func (s *Step) walk(fn func(*Step, int), depth int) {
	fn(s, depth)
	if s.Kind == StepConditional {
		for _, br := range s.Branches() {
			if br.Step != nil {
				br.Step.walk(fn, depth+1)
			}
		}
		return
	}
	for i := range s.Steps {
		s.Steps[i].walk(fn, depth+1)
	}
}
