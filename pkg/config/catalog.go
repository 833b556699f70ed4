package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProductDefinition is the static definition of one data product, loaded
// from catalog.yaml at startup and registered into pkg/catalog at runtime.
type ProductDefinition struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	UseCases    []string `yaml:"use_cases"`
	KeyMetrics  []string `yaml:"key_metrics"`
	SourceFile  string   `yaml:"source_file"`
	Filter      string   `yaml:"filter"`
	RouteHint   string   `yaml:"route_hint"`
}

type catalogFile struct {
	Products []ProductDefinition `yaml:"products"`
}

// LoadCatalogFile reads and validates the catalog definition at path.
// A product missing an id/source_file, or two products sharing an id, is
// an ErrInvalidCatalog/ErrDuplicateProduct condition respectively.
func LoadCatalogFile(path string) ([]ProductDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCatalogFileNotFound
		}
		return nil, err
	}

	raw = ExpandEnv(raw)

	var parsed catalogFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	seen := make(map[string]struct{}, len(parsed.Products))
	for _, p := range parsed.Products {
		if p.ID == "" || p.SourceFile == "" {
			return nil, fmt.Errorf("%w: product missing id or source_file", ErrInvalidCatalog)
		}
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return parsed.Products, nil
}
