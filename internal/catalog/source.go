package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/pkg/logger"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// Source supplies the products once, at startup.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]model.Product, error)
}

// Load reads a source and builds the catalog from it.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	logger.Info("Loading catalog", map[string]interface{}{
		"source": src.Name(),
	})

	products, err := src.Load(ctx)
	if err != nil {
		logger.Error("Failed to read catalog source", err, map[string]interface{}{
			"source": src.Name(),
		})
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}

	c, err := New(products)
	if err != nil {
		logger.Error("Catalog rejected", err, map[string]interface{}{
			"source": src.Name(),
		})
		return nil, err
	}

	logger.Info("Catalog loaded", map[string]interface{}{
		"source":   src.Name(),
		"products": c.Len(),
		"shops":    c.Shops(),
	})
	return c, nil
}

// DecodeJSON reads a JSON array of products.
func DecodeJSON(r io.Reader) ([]model.Product, error) {
	var products []model.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	return products, nil
}

// EmbeddedSource serves the demo catalog compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := json.Unmarshal(defaultCatalog, &products); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return products, nil
}

// FileSource reads a JSON catalog from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) ([]model.Product, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeJSON(f)
}

// ObjectReader fetches a stored object by key.
type ObjectReader interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
}

// ObjectSource reads a JSON catalog from object storage (S3).
type ObjectSource struct {
	Store ObjectReader
	Key   string
}

func (s ObjectSource) Name() string { return "object:" + s.Key }

func (s ObjectSource) Load(ctx context.Context) ([]model.Product, error) {
	body, err := s.Store.GetObject(ctx, s.Key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return DecodeJSON(body)
}

// ProductLister lists products in catalog order with tiers and slots loaded.
type ProductLister interface {
	FindAll(ctx context.Context) ([]model.Product, error)
}

// DatabaseSource reads the catalog tables.
type DatabaseSource struct {
	Repo ProductLister
}

func (DatabaseSource) Name() string { return "database" }

func (s DatabaseSource) Load(ctx context.Context) ([]model.Product, error) {
	return s.Repo.FindAll(ctx)
}
