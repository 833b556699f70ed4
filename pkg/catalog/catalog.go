// Package catalog holds the in-memory product registry: each product's id,
// description, use cases, key metrics, source file, and UI route hint. The
// registry is built once at startup from config.ProductDefinition entries
// and never mutated afterward.
package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/opencity/insight/pkg/apperror"
	"github.com/opencity/insight/pkg/config"
)

// Product is the runtime representation of one data product.
type Product struct {
	ID          string
	Description string
	UseCases    []string
	KeyMetrics  []string
	SourceFile  string
	Filter      string
	RouteHint   string
}

// Catalog maps product id to Product. Registration order is preserved for
// describe_for_planner's deterministic serialization.
type Catalog struct {
	mu       sync.RWMutex
	order    []string
	products map[string]Product
}

// New builds a Catalog from the loaded product definitions. A duplicate id
// is a startup configuration error the caller should treat as fatal.
func New(defs []config.ProductDefinition) (*Catalog, error) {
	c := &Catalog{
		order:    make([]string, 0, len(defs)),
		products: make(map[string]Product, len(defs)),
	}
	for _, d := range defs {
		if _, exists := c.products[d.ID]; exists {
			return nil, apperror.New(apperror.KindConfigError, fmt.Sprintf("duplicate product id in catalog: %s", d.ID))
		}
		c.products[d.ID] = Product{
			ID:          d.ID,
			Description: d.Description,
			UseCases:    append([]string(nil), d.UseCases...),
			KeyMetrics:  append([]string(nil), d.KeyMetrics...),
			SourceFile:  d.SourceFile,
			Filter:      d.Filter,
			RouteHint:   d.RouteHint,
		}
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// Get retrieves a Product by id. Ids are case-sensitive.
func (c *Catalog) Get(id string) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return Product{}, apperror.UnknownProduct(id)
	}
	return p, nil
}

// Len returns the number of registered products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// All returns every product in registration order.
func (c *Catalog) All() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// DescribeForPlanner renders a deterministic, stable description of every
// product for inclusion in the Planner's prompt: same catalog always
// produces byte-identical output.
func (c *Catalog) DescribeForPlanner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	for _, id := range c.order {
		p := c.products[id]
		fmt.Fprintf(&b, "- %s: %s\n", p.ID, p.Description)
		if len(p.UseCases) > 0 {
			fmt.Fprintf(&b, "  use cases: %s\n", strings.Join(p.UseCases, "; "))
		}
		if len(p.KeyMetrics) > 0 {
			fmt.Fprintf(&b, "  key metrics: %s\n", strings.Join(p.KeyMetrics, ", "))
		}
	}
	return b.String()
}
