package db

import (
	"context"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/pkg/logger"
	"gorm.io/gorm"
)

// CatalogModels are the tables backing the database catalog source.
var CatalogModels = []interface{}{
	&model.Product{},
	&model.Tier{},
	&model.BoxSlot{},
	&model.BoxOption{},
}

// Migrate creates the catalog tables and seeds the demo catalog into an
// empty products table.
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(CatalogModels...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedDemoCatalog(db); err != nil {
		logger.Error("Failed to seed demo catalog during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(CatalogModels),
	})
	return nil
}

func seedDemoCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	products, err := catalog.EmbeddedSource{}.Load(context.Background())
	if err != nil {
		return err
	}
	model.AssignPositions(products)
	if err := db.Create(&products).Error; err != nil {
		return err
	}

	logger.Info("Demo catalog seeded", map[string]interface{}{
		"products": len(products),
	})
	return nil
}
