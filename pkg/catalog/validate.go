package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// ValidationError represents a single validation finding with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "usecases[0].steps[1].if")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateOptions tunes domain validation.
type ValidateOptions struct {
	// GroupBy is the tag the selector labels with; use cases missing it
	// get a warning.
	GroupBy string
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// ValidateFile runs the 3-phase validation pipeline on a catalog file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string, opts ValidateOptions) (*Catalog, []*ValidationError) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	errs := validateSemantic(c)
	errs = append(errs, ValidateDomain(c, opts)...)
	if len(errs) > 0 {
		return c, errs
	}
	return c, nil
}

func semanticError(format string, args ...any) []*ValidationError {
	return []*ValidationError{{
		Phase:    "semantic",
		Message:  fmt.Sprintf(format, args...),
		Severity: "error",
	}}
}

// validateSemantic validates the catalog against the generated JSON Schema.
func validateSemantic(c *Catalog) []*ValidationError {
	data, err := json.Marshal(c)
	if err != nil {
		return semanticError("marshal for schema validation: %v", err)
	}
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semanticError("generate schema: %v", err)
	}
	schemaDoc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return semanticError("unmarshal schema: %v", err)
	}

	comp := sjsonschema.NewCompiler()
	if err := comp.AddResource("usecases-v0.json", schemaDoc); err != nil {
		return semanticError("add schema resource: %v", err)
	}
	sch, err := comp.Compile("usecases-v0.json")
	if err != nil {
		return semanticError("compile schema: %v", err)
	}

	doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return semanticError("unmarshal document: %v", err)
	}
	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return semanticError("%v", err)
		}
		var errs []*ValidationError
		for _, cause := range flattenValidationErrors(ve) {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Path:     strings.Join(cause.InstanceLocation, "/"),
				Message:  fmt.Sprintf("%v", cause.ErrorKind),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// domainValidator accumulates domain findings.
type domainValidator struct {
	errs []*ValidationError
}

func (v *domainValidator) errorf(path, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Phase: "domain", Path: path, Message: fmt.Sprintf(format, args...), Severity: "error"})
}

func (v *domainValidator) warnf(path, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Phase: "domain", Path: path, Message: fmt.Sprintf(format, args...), Severity: "warning"})
}

// ValidateDomain performs Phase 3 domain-level validation.
// Returns a slice of findings; empty means valid.
func ValidateDomain(c *Catalog, opts ValidateOptions) []*ValidationError {
	v := &domainValidator{}

	if c.APIVersion != APIVersion {
		v.errorf("apiVersion", "unrecognized apiVersion %q, expected %q", c.APIVersion, APIVersion)
	}
	if len(c.UseCases) == 0 {
		v.errorf("usecases", "catalog declares no use cases")
	}

	seen := make(map[string]int)
	for i := range c.UseCases {
		uc := &c.UseCases[i]
		base := fmt.Sprintf("usecases[%d]", i)

		switch prev, dup := seen[uc.Name]; {
		case uc.Name == "":
			v.errorf(base+".name", "name is required")
		case dup:
			v.errorf(base+".name", "duplicate name %q (first declared at usecases[%d])", uc.Name, prev)
		default:
			seen[uc.Name] = i
		}
		if strings.TrimSpace(uc.Description) == "" {
			v.errorf(base+".description", "description is required")
		}
		if opts.GroupBy != "" {
			if _, ok := uc.Tags[opts.GroupBy]; !ok {
				v.warnf(base+".tags", "missing %q tag; the selector label will start with an empty group", opts.GroupBy)
			}
		}

		uc.RequestSchema.Each(func(name string, def ParamDef) {
			switch def.Type {
			case usecase.TypeNumber, usecase.TypeBoolean, usecase.TypeString:
			case "":
				v.warnf(base+".request_schema."+name, "type is empty; prompted as text")
			default:
				v.warnf(base+".request_schema."+name, "type %q is not Number, Boolean or String; prompted as text", def.Type)
			}
		})

		for j := range uc.Steps {
			v.validateStep(&uc.Steps[j], fmt.Sprintf("%s.steps[%d]", base, j))
		}
		v.validatePolicy(uc.Authorize, base+".authorize")
		v.validateAction(uc.Run, base+".run")
	}
	return v.errs
}

func (v *domainValidator) validateStep(s *StepDef, path string) {
	switch s.Type {
	case "":
		if s.If != nil || s.Then != nil || s.Else != nil {
			v.errorf(path, "if/then/else require type %q", usecase.TagIfElse)
		}
		for i := range s.Steps {
			v.validateStep(&s.Steps[i], fmt.Sprintf("%s.steps[%d]", path, i))
		}
	case usecase.TagIfElse:
		if len(s.Steps) > 0 {
			v.errorf(path+".steps", "a conditional step carries branches, not steps")
		}
		for _, br := range []struct {
			name string
			def  *StepDef
		}{{"if", s.If}, {"then", s.Then}, {"else", s.Else}} {
			if br.def == nil {
				v.errorf(path+"."+br.name, "conditional step is missing its %q branch", br.name)
				continue
			}
			v.validateStep(br.def, path+"."+br.name)
		}
	default:
		v.errorf(path+".type", "unknown step type %q", s.Type)
	}
}

func (v *domainValidator) validatePolicy(p *Policy, path string) {
	if p == nil {
		return
	}
	for i, rule := range p.Rules {
		rp := fmt.Sprintf("%s.rules[%d]", path, i)
		if !validAction(rule.Action) {
			v.errorf(rp+".action", "action must be %q or %q, got %q", ActionAllow, ActionDeny, rule.Action)
		}
		if rule.When != "" {
			if _, err := expr.Compile(rule.When, expr.AsBool()); err != nil {
				v.errorf(rp+".when", "invalid expression: %v", err)
			}
		}
	}
	if p.Default != "" && !validAction(p.Default) {
		v.errorf(path+".default", "default must be %q or %q, got %q", ActionAllow, ActionDeny, p.Default)
	}
}

func (v *domainValidator) validateAction(a *Action, path string) {
	if a == nil {
		return
	}
	if a.FailWhen != "" {
		if _, err := expr.Compile(a.FailWhen, expr.AsBool()); err != nil {
			v.errorf(path+".fail_when", "invalid expression: %v", err)
		}
	} else if a.Error != "" {
		v.warnf(path+".error", "error is only reported when fail_when is set")
	}
	if a.Result != "" {
		if _, err := expr.Compile(a.Result); err != nil {
			v.errorf(path+".result", "invalid expression: %v", err)
		}
	}
}

func validAction(a string) bool {
	return a == ActionAllow || a == ActionDeny
}
