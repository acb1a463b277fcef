package product

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	common "modaorganica/internal/domain/common"
)

//go:embed catalogue.yaml
var defaultCatalogueYAML []byte

type seedEntry struct {
	ID          string `yaml:"id"`
	SKU         string `yaml:"sku"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Image       string `yaml:"image"`
}

// ParseSeed reads a catalogue YAML with a top-level "products" list.
// Every entry is validated; ids must be unique.
func ParseSeed(raw []byte) ([]Product, error) {
	var doc struct {
		Products []seedEntry `yaml:"products"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("product: parse seed: %w", err)
	}

	out := make([]Product, 0, len(doc.Products))
	seen := make(map[ID]bool, len(doc.Products))
	for i, e := range doc.Products {
		price, err := common.ParseMoney(e.Price)
		if err != nil {
			return nil, fmt.Errorf("product: seed #%d price: %w", i+1, err)
		}
		p := Product{
			ID:          ID(e.ID),
			SKU:         e.SKU,
			Name:        e.Name,
			Description: e.Description,
			Price:       price,
			Stock:       e.Stock,
			ImageURL:    e.Image,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product: seed #%d: %w", i+1, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product: seed #%d: duplicate id %q", i+1, p.ID)
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

// DefaultSeed is the embedded catalogue.
func DefaultSeed() ([]Product, error) {
	return ParseSeed(defaultCatalogueYAML)
}
