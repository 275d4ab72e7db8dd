package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// File is the on-disk catalog layout. JSON files parse too, as JSON is YAML.
type File struct {
	Generators []shield.Generator `json:"generators" yaml:"generators"`
	Components []shield.Component `json:"components" yaml:"components"`
	BlockTypes []shield.BlockType `json:"block_types" yaml:"block_types"`
}

// ParseFile decodes catalog data without validating it.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &f, nil
}

// Parse decodes and validates catalog data.
func Parse(data []byte) (*Catalog, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// Build validates the file contents into a Catalog.
func (f *File) Build() (*Catalog, error) {
	return New(f.Generators, f.Components, f.BlockTypes)
}

// LoadFile reads and validates a catalog from a YAML or JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// DefaultFile returns the embedded default catalog contents.
func DefaultFile() (*File, error) {
	return ParseFile(defaultCatalogYAML)
}

// Default returns the embedded default catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}
