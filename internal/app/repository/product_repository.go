package repository

import (
	"context"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id model.ProductID) (*model.Product, error)
	ReplaceAll(ctx context.Context, products []model.Product) error
	Count(ctx context.Context) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("BoxPicks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("BoxPicks.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// FindAll returns every product in catalog order with tiers and box slots.
func (r *productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.withChildren(ctx).Order("position ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to fetch products from database", err)
		return nil, err
	}

	logger.Debug("Fetched products from database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id model.ProductID) (*model.Product, error) {
	var product model.Product
	if err := r.withChildren(ctx).First(&product, "id = ?", id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to fetch product", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

// ReplaceAll swaps the whole catalog in one transaction. Positions follow
// the slice order.
func (r *productRepository) ReplaceAll(ctx context.Context, products []model.Product) error {
	model.AssignPositions(products)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"box_options", "box_slots", "product_tiers", "products"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		if len(products) == 0 {
			return nil
		}
		return tx.Create(&products).Error
	})
	if err != nil {
		logger.Error("Failed to replace catalog", err, map[string]interface{}{
			"products": len(products),
		})
		return err
	}

	logger.Info("Catalog replaced in database", map[string]interface{}{
		"products": len(products),
	})
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}
