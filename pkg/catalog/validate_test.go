package catalog

import (
	"encoding/json"
	"strings"
	"testing"
)

func findingsContaining(errs []*ValidationError, phase, substr string) bool {
	for _, e := range errs {
		if e.Phase == phase && strings.Contains(e.Error(), substr) {
			return true
		}
	}
	return false
}

func TestValidateFileValid(t *testing.T) {
	c, errs := ValidateFile("testdata/valid.yaml", ValidateOptions{GroupBy: "domain"})
	if c == nil {
		t.Fatal("expected catalog")
	}
	if len(errs) != 0 {
		t.Fatalf("expected no findings, got: %v", errs)
	}
}

func TestValidateFileStructural(t *testing.T) {
	c, errs := ValidateFile("testdata/unknown_field.yaml", ValidateOptions{})
	if c != nil {
		t.Error("structural failure should not return a catalog")
	}
	if len(errs) != 1 || errs[0].Phase != "structural" {
		t.Fatalf("expected one structural finding, got: %v", errs)
	}
}

func TestValidateFileDomain(t *testing.T) {
	_, errs := ValidateFile("testdata/invalid.yaml", ValidateOptions{})
	if !HasErrors(errs) {
		t.Fatal("expected errors")
	}
	for _, want := range []string{
		"unrecognized apiVersion",
		`duplicate name "dup"`,
		"description is required",
		`missing its "then" branch`,
		`missing its "else" branch`,
		"invalid expression",
	} {
		if !findingsContaining(errs, "domain", want) {
			t.Errorf("missing finding %q in %v", want, errs)
		}
	}
}

func TestValidateDomainStepShapes(t *testing.T) {
	c := &Catalog{APIVersion: APIVersion, UseCases: []UseCaseDef{{
		Name:        "shapes",
		Description: "Shapes",
		Steps: []StepDef{
			{Description: "loop", Type: "while"},
			{Description: "stray", If: &StepDef{Description: "x"}},
			{Description: "mixed", Type: "if else", Steps: []StepDef{{Description: "child"}},
				If: &StepDef{Description: "c"}, Then: &StepDef{Description: "t"}, Else: &StepDef{Description: "e"}},
		},
	}}}
	errs := ValidateDomain(c, ValidateOptions{})
	for _, want := range []string{
		`unknown step type "while"`,
		"if/then/else require type",
		"carries branches, not steps",
	} {
		if !findingsContaining(errs, "domain", want) {
			t.Errorf("missing finding %q in %v", want, errs)
		}
	}
}

func TestValidateDomainWarnings(t *testing.T) {
	c := &Catalog{APIVersion: APIVersion, UseCases: []UseCaseDef{{
		Name:          "warn",
		Description:   "Warn",
		RequestSchema: mustParamMap(t, `{"when":{"type":"Date"},"note":{}}`),
		Run:           &Action{Error: "never shown"},
	}}}

	errs := ValidateDomain(c, ValidateOptions{GroupBy: "domain"})
	if HasErrors(errs) {
		t.Fatalf("expected warnings only, got: %v", errs)
	}
	for _, want := range []string{
		`missing "domain" tag`,
		`type "Date" is not Number, Boolean or String`,
		"type is empty",
		"only reported when fail_when is set",
	} {
		if !findingsContaining(errs, "domain", want) {
			t.Errorf("missing warning %q in %v", want, errs)
		}
	}
}

func TestValidateDomainPolicyActions(t *testing.T) {
	c := &Catalog{APIVersion: APIVersion, UseCases: []UseCaseDef{{
		Name:        "p",
		Description: "Policy",
		Authorize: &Policy{
			Rules:   []Rule{{When: "true", Action: "maybe"}},
			Default: "sometimes",
		},
	}}}
	errs := ValidateDomain(c, ValidateOptions{})
	if !findingsContaining(errs, "domain", `got "maybe"`) || !findingsContaining(errs, "domain", `got "sometimes"`) {
		t.Errorf("expected action findings, got: %v", errs)
	}
}

func TestValidateSemanticRejectsBadEnum(t *testing.T) {
	c := &Catalog{APIVersion: APIVersion, UseCases: []UseCaseDef{{
		Name:        "p",
		Description: "Policy",
		Authorize:   &Policy{Default: "sometimes"},
	}}}
	if errs := validateSemantic(c); len(errs) == 0 {
		t.Error("expected semantic finding for default enum")
	}
	ok := &Catalog{APIVersion: APIVersion, UseCases: []UseCaseDef{{Name: "p", Description: "Fine"}}}
	if errs := validateSemantic(ok); len(errs) != 0 {
		t.Errorf("unexpected semantic findings: %v", errs)
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc["$id"] != SchemaID {
		t.Errorf("$id = %v", doc["$id"])
	}
	if !strings.Contains(string(data), "request_schema") {
		t.Error("schema should describe request_schema")
	}
}

func mustParamMap(t *testing.T, raw string) ParamMap {
	t.Helper()
	var p ParamMap
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	return p
}
