package catalog

import (
	"strings"

	"github.com/ikkim/vitrine-backend/internal/app/model"
)

// FilterNew selects products flagged as new; any other filter value is a
// shop tag.
const FilterNew = "new"

func MatchesFilter(p *model.Product, filter string) bool {
	if filter == FilterNew {
		return p.IsNew
	}
	return p.Shop == filter
}

// NormalizeSearch trims and lower-cases a raw search box value.
func NormalizeSearch(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// MatchesSearch is a case-insensitive substring match over title,
// subtitle, badge, shop and tags.
func MatchesSearch(p *model.Product, term string) bool {
	term = NormalizeSearch(term)
	if term == "" {
		return true
	}
	fields := make([]string, 0, 4+len(p.Tags))
	fields = append(fields, p.Title, p.Subtitle, p.Badge, p.Shop)
	fields = append(fields, p.Tags...)
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), term)
}

// Filtered keeps catalog order. An empty result is not an error.
func Filtered(c *Catalog, filter, term string) []model.Product {
	out := []model.Product{}
	for i := range c.products {
		p := &c.products[i]
		if MatchesFilter(p, filter) && MatchesSearch(p, term) {
			out = append(out, *p)
		}
	}
	return out
}
