package service

import (
	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/ikkim/vitrine-backend/pkg/logger"
)

// CatalogService answers stateless catalog queries.
type CatalogService interface {
	List(filter, search string) []storefront.Card
	Get(id model.ProductID) (*model.Product, error)
	Shops() []string
}

type catalogService struct {
	catalog *catalog.Catalog
}

func NewCatalogService(cat *catalog.Catalog) CatalogService {
	return &catalogService{catalog: cat}
}

// List applies the filter only when one is given; an empty filter lists
// the whole catalog.
func (s *catalogService) List(filter, search string) []storefront.Card {
	var products []model.Product
	if filter == "" {
		products = s.searchAll(search)
	} else {
		products = catalog.Filtered(s.catalog, filter, search)
	}

	cards := make([]storefront.Card, 0, len(products))
	for i := range products {
		cards = append(cards, storefront.NewCard(&products[i]))
	}
	return cards
}

func (s *catalogService) searchAll(search string) []model.Product {
	out := []model.Product{}
	products := s.catalog.Products()
	for i := range products {
		if catalog.MatchesSearch(&products[i], search) {
			out = append(out, products[i])
		}
	}
	return out
}

func (s *catalogService) Get(id model.ProductID) (*model.Product, error) {
	p := s.catalog.Find(id)
	if p == nil {
		logger.Debug("Product not found", map[string]interface{}{
			"product_id": id,
		})
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (s *catalogService) Shops() []string {
	return s.catalog.Shops()
}
