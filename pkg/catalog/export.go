package catalog

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// SchemaID identifies the generated catalog schema.
const SchemaID = "https://github.com/ormasoftchile/ucrepl/schemas/usecases-v0.json"

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from the
// usecases/v0 Catalog Go types.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&Catalog{})
	s.ID = SchemaID
	s.Title = "Use Case Catalog usecases/v0"
	s.Description = "Schema for usecases/v0 catalog YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal catalog schema")
	}
	return data, nil
}
