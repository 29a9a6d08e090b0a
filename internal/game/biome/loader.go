package biome

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlBiomeFile is the top-level YAML structure for biome files.
type yamlBiomeFile struct {
	Biomes []yamlBiome `yaml:"biomes"`
}

// yamlBiome is the YAML representation of one biome.
type yamlBiome struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Glyph string `yaml:"glyph"`
}

// LoadRegistryFromFile reads and validates a biome YAML file.
//
// Precondition: path must point to a valid YAML biome file.
// Postcondition: Returns a validated Registry or a non-nil error.
func LoadRegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading biome file %s: %w", path, err)
	}
	return LoadRegistryFromBytes(data)
}

// LoadRegistryFromBytes parses and validates a Registry from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the biome schema.
// Postcondition: Returns a validated Registry or a non-nil error.
func LoadRegistryFromBytes(data []byte) (*Registry, error) {
	var file yamlBiomeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing biome YAML: %w", err)
	}

	biomes := make([]Biome, 0, len(file.Biomes))
	for _, yb := range file.Biomes {
		name := yb.Name
		if name == "" {
			name = yb.ID
		}
		biomes = append(biomes, Biome{ID: ID(yb.ID), Name: name, Glyph: yb.Glyph})
	}

	r, err := NewRegistry(biomes)
	if err != nil {
		return nil, fmt.Errorf("validating biomes: %w", err)
	}
	return r, nil
}
