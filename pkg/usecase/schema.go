package usecase

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Well-known type descriptor names. Any other name is a textual kind.
const (
	TypeNumber  = "Number"
	TypeBoolean = "Boolean"
	TypeString  = "String"
)

// TypeDescriptor identifies the kind of a request parameter.
type TypeDescriptor struct {
	Name string `json:"name"`
}

// Param is one named schema entry.
type Param struct {
	Name string
	Type TypeDescriptor
}

// Schema maps parameter names to type descriptors. Iteration follows
// insertion order.
type Schema struct {
	params *orderedmap.OrderedMap[string, TypeDescriptor]
}

// NewSchema builds a schema from params in the given order.
func NewSchema(params ...Param) *Schema {
	s := &Schema{params: orderedmap.New[string, TypeDescriptor]()}
	for _, p := range params {
		s.Add(p.Name, p.Type)
	}
	return s
}

// Add appends (or replaces in place) a parameter.
func (s *Schema) Add(name string, t TypeDescriptor) {
	if s.params == nil {
		s.params = orderedmap.New[string, TypeDescriptor]()
	}
	s.params.Set(name, t)
}

// Len returns the number of parameters. A nil schema is empty.
func (s *Schema) Len() int {
	if s == nil || s.params == nil {
		return 0
	}
	return s.params.Len()
}

// Params returns the entries in insertion order.
func (s *Schema) Params() []Param {
	if s.Len() == 0 {
		return nil
	}
	out := make([]Param, 0, s.params.Len())
	for p := s.params.Oldest(); p != nil; p = p.Next() {
		out = append(out, Param{Name: p.Key, Type: p.Value})
	}
	return out
}

// Get looks up a parameter's type descriptor.
func (s *Schema) Get(name string) (TypeDescriptor, bool) {
	if s.Len() == 0 {
		return TypeDescriptor{}, false
	}
	return s.params.Get(name)
}

// ---------------------------------------------------------------------------
// Answers
// ---------------------------------------------------------------------------

// Answers holds the values entered for a schema, keyed by parameter name
// in the schema's order.
type Answers struct {
	values *orderedmap.OrderedMap[string, any]
}

// NewAnswers returns an empty answer set.
func NewAnswers() *Answers {
	return &Answers{values: orderedmap.New[string, any]()}
}

// Set records the value for name.
func (a *Answers) Set(name string, value any) {
	if a.values == nil {
		a.values = orderedmap.New[string, any]()
	}
	a.values.Set(name, value)
}

// Get returns the value for name.
func (a *Answers) Get(name string) (any, bool) {
	if a == nil || a.values == nil {
		return nil, false
	}
	return a.values.Get(name)
}

// Len returns the number of answers.
func (a *Answers) Len() int {
	if a == nil || a.values == nil {
		return 0
	}
	return a.values.Len()
}

// Names returns the answered names in order.
func (a *Answers) Names() []string {
	if a.Len() == 0 {
		return nil
	}
	names := make([]string, 0, a.values.Len())
	for p := a.values.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// Map copies the answers into a plain map.
func (a *Answers) Map() map[string]any {
	out := make(map[string]any, a.Len())
	if a.Len() == 0 {
		return out
	}
	for p := a.values.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = p.Value
	}
	return out
}

// MarshalJSON writes the answers as an object in insertion order.
func (a *Answers) MarshalJSON() ([]byte, error) {
	if a.Len() == 0 {
		return []byte("{}"), nil
	}
	return a.values.MarshalJSON()
}

// UnmarshalJSON reads an object, keeping its key order.
func (a *Answers) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, any]()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	a.values = m
	return nil
}
