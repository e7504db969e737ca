package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk YAML layout of a catalog.
type fileFormat struct {
	Sections []SectionData `yaml:"sections"`
}

// Parse decodes a YAML catalog definition.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(f.Sections...)
}

// LoadFile reads and parses the catalog file at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	return c, nil
}
