package catalog

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and structurally decodes a usecases/v0 catalog.
// Unknown fields are a structural error.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "open catalog"),
			"pass the catalog path as an argument or set `catalog` in ucrepl.yaml")
	}
	defer f.Close()
	return Load(f)
}

// Load reads a usecases/v0 catalog from a reader.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // strict: reject unknown fields
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(err, "structural decode")
	}
	return &c, nil
}

// Find returns the use case definition with the given name.
func (c *Catalog) Find(name string) (*UseCaseDef, bool) {
	for i := range c.UseCases {
		if c.UseCases[i].Name == name {
			return &c.UseCases[i], true
		}
	}
	return nil, false
}

// Names lists the use case names in document order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.UseCases))
	for _, uc := range c.UseCases {
		names = append(names, uc.Name)
	}
	return names
}
