package registry

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_blocks.yaml
var defaultBlocks []byte

// catalogFile is the on-disk layout of a block catalog.
type catalogFile struct {
	Blocks []BlockDefinition `yaml:"blocks"`
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing block catalog: %w", err)
	}
	c := NewCatalog()
	for _, def := range f.Blocks {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile builds a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", path, err)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultBlocks)
	if err != nil {
		panic(fmt.Sprintf("registry: built-in catalog: %v", err))
	}
	return c
}

// Marshal encodes the catalog definitions as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(catalogFile{Blocks: c.Definitions()})
}
