// Package catalog holds the read-only product catalog and the grid
// filter/search predicates.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/cartkey"
)

var (
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrProductNotFound = errors.New("product not found")
)

// Catalog is immutable once built. Products() hands out copies of the
// slice header only; callers must not modify the products.
type Catalog struct {
	products []model.Product
	index    map[model.ProductID]int
}

var validate = validator.New()

// New validates the products and builds the id index.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, len(products)),
		index:    make(map[model.ProductID]int, len(products)),
	}
	copy(c.products, products)

	for i := range c.products {
		p := &c.products[i]
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("%w: product %q: %v", ErrInvalidCatalog, p.ID, err)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
		}
		c.index[p.ID] = i
	}
	return c, nil
}

// MustNew panics on invalid input. Intended for fixtures.
func MustNew(products []model.Product) *Catalog {
	c, err := New(products)
	if err != nil {
		panic(err)
	}
	return c
}

func validateProduct(p *model.Product) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if err := cartkey.CheckField("product id", string(p.ID)); err != nil {
		return err
	}

	labels := make(map[string]bool, len(p.Tiers))
	for _, t := range p.Tiers {
		if t.Price.IsNegative() {
			return fmt.Errorf("tier %q has a negative price", t.Label)
		}
		if labels[t.Label] {
			return fmt.Errorf("duplicate tier label %q", t.Label)
		}
		labels[t.Label] = true
		if err := cartkey.CheckField("tier label", t.Label); err != nil {
			return err
		}
	}

	if !p.IsBox {
		return nil
	}
	if len(p.BoxPicks) == 0 {
		return errors.New("box product without slots")
	}
	// Option text is resolved by id across all slots, so an id must map to
	// one text within the product.
	texts := make(map[string]string)
	for _, slot := range p.BoxPicks {
		seen := make(map[string]bool, len(slot.Options))
		for _, o := range slot.Options {
			if seen[o.ID] {
				return fmt.Errorf("slot %q repeats option %q", slot.Label, o.ID)
			}
			seen[o.ID] = true
			if prev, ok := texts[o.ID]; ok && prev != o.Text {
				return fmt.Errorf("option id %q has conflicting texts", o.ID)
			}
			texts[o.ID] = o.Text
			if err := cartkey.CheckSelection("option id", o.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) Products() []model.Product {
	return c.products
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Find returns nil for unknown ids.
func (c *Catalog) Find(id model.ProductID) *model.Product {
	i, ok := c.index[id]
	if !ok {
		return nil
	}
	return &c.products[i]
}

// Shops lists the distinct shop tags, sorted.
func (c *Catalog) Shops() []string {
	set := make(map[string]bool)
	for _, p := range c.products {
		if p.Shop != "" {
			set[p.Shop] = true
		}
	}
	shops := make([]string, 0, len(set))
	for s := range set {
		shops = append(shops, s)
	}
	sort.Strings(shops)
	return shops
}
