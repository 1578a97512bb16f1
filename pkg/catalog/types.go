// Package catalog loads declarative use-case catalogs (usecases/v0 YAML)
// and adapts them to the usecase.UseCase contract.
package catalog

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// APIVersion is the only catalog version understood.
const APIVersion = "usecases/v0"

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// Catalog is the top-level usecases/v0 document.
type Catalog struct {
	APIVersion string       `yaml:"apiVersion" json:"apiVersion"`
	UseCases   []UseCaseDef `yaml:"usecases"   json:"usecases"`
}

// UseCaseDef declares one use case.
type UseCaseDef struct {
	Name          string            `yaml:"name"        json:"name"`
	Description   string            `yaml:"description" json:"description"`
	Tags          map[string]string `yaml:"tags,omitempty"           json:"tags,omitempty"`
	RequestSchema ParamMap          `yaml:"request_schema,omitempty" json:"request_schema,omitempty"`
	Steps         []StepDef         `yaml:"steps,omitempty"          json:"steps,omitempty"`
	Authorize     *Policy           `yaml:"authorize,omitempty"      json:"authorize,omitempty"`
	Run           *Action           `yaml:"run,omitempty"            json:"run,omitempty"`
}

// ---------------------------------------------------------------------------
// Request schema
// ---------------------------------------------------------------------------

// ParamDef declares one request parameter.
type ParamDef struct {
	Type        string `yaml:"type,omitempty"        json:"type,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ParamMap is the ordered request_schema mapping. Document order is prompt
// order.
type ParamMap struct {
	m *orderedmap.OrderedMap[string, ParamDef]
}

// NewParamMap builds a ParamMap from pairs in order.
func NewParamMap(pairs ...orderedmap.Pair[string, ParamDef]) ParamMap {
	return ParamMap{m: orderedmap.New[string, ParamDef](orderedmap.WithInitialData(pairs...))}
}

// Len returns the number of parameters.
func (p ParamMap) Len() int {
	if p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Each visits the parameters in document order.
func (p ParamMap) Each(fn func(name string, def ParamDef)) {
	if p.m == nil {
		return
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Schema converts the mapping to a usecase.Schema.
func (p ParamMap) Schema() *usecase.Schema {
	s := usecase.NewSchema()
	p.Each(func(name string, def ParamDef) {
		s.Add(name, usecase.TypeDescriptor{Name: def.Type})
	})
	return s
}

// UnmarshalYAML keeps the mapping's key order.
func (p *ParamMap) UnmarshalYAML(node *yaml.Node) error {
	m := orderedmap.New[string, ParamDef]()
	if err := m.UnmarshalYAML(node); err != nil {
		return err
	}
	p.m = m
	return nil
}

// MarshalJSON writes the mapping in order.
func (p ParamMap) MarshalJSON() ([]byte, error) {
	if p.m == nil {
		return []byte("{}"), nil
	}
	return p.m.MarshalJSON()
}

// UnmarshalJSON reads the mapping, keeping key order.
func (p *ParamMap) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, ParamDef]()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	p.m = m
	return nil
}

// JSONSchema describes ParamMap as an object of ParamDef values.
func (ParamMap) JSONSchema() *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set("type", &jsonschema.Schema{Type: "string"})
	props.Set("description", &jsonschema.Schema{Type: "string"})
	return &jsonschema.Schema{
		Type: "object",
		AdditionalProperties: &jsonschema.Schema{
			Type:                 "object",
			Properties:           props,
			AdditionalProperties: jsonschema.FalseSchema,
		},
	}
}

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

// StepDef is the YAML form of a plan step. Type is empty for a simple step
// and "if else" for a conditional one.
type StepDef struct {
	Description string    `yaml:"description"     json:"description"`
	Type        string    `yaml:"type,omitempty"  json:"type,omitempty" jsonschema:"enum=if else"`
	Steps       []StepDef `yaml:"steps,omitempty" json:"steps,omitempty"`
	If          *StepDef  `yaml:"if,omitempty"    json:"if,omitempty"`
	Then        *StepDef  `yaml:"then,omitempty"  json:"then,omitempty"`
	Else        *StepDef  `yaml:"else,omitempty"  json:"else,omitempty"`
}

// ToStep converts the definition to the usecase.Step union.
func (d *StepDef) ToStep() usecase.Step {
	if d.Type == usecase.TagIfElse {
		return usecase.IfElse(d.Description, branchStep(d.If), branchStep(d.Then), branchStep(d.Else))
	}
	children := make([]usecase.Step, 0, len(d.Steps))
	for i := range d.Steps {
		children = append(children, d.Steps[i].ToStep())
	}
	if len(children) == 0 {
		children = nil
	}
	return usecase.Simple(d.Description, children...)
}

func branchStep(d *StepDef) usecase.Step {
	if d == nil {
		return usecase.Simple("")
	}
	return d.ToStep()
}

// ---------------------------------------------------------------------------
// Authorization and action
// ---------------------------------------------------------------------------

// Policy action values.
const (
	ActionAllow = "allow"
	ActionDeny  = "deny"
)

// Policy decides who may run a use case.
type Policy struct {
	Rules   []Rule `yaml:"rules,omitempty"   json:"rules,omitempty"`
	Default string `yaml:"default,omitempty" json:"default,omitempty" jsonschema:"enum=allow,enum=deny"`
}

// Rule matches when its expression is true. An empty When always matches.
type Rule struct {
	When   string `yaml:"when,omitempty" json:"when,omitempty"`
	Action string `yaml:"action"         json:"action" jsonschema:"enum=allow,enum=deny"`
}

// Action is the declarative run step of a use case. Expressions see every
// answer by name and the whole set as `answers`.
type Action struct {
	FailWhen string `yaml:"fail_when,omitempty" json:"fail_when,omitempty"`
	Error    string `yaml:"error,omitempty"     json:"error,omitempty"`
	Result   string `yaml:"result,omitempty"    json:"result,omitempty"`
}
