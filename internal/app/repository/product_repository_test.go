package repository

import (
	"context"
	"testing"

	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewProductRepository(testDB)
	return testDB, repo
}

func demoProducts(t *testing.T) []model.Product {
	products, err := catalog.EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	return products
}

func TestProductRepository_ReplaceAllAndFindAll(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, demoProducts(t)))

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	box := products[0]
	assert.Equal(t, model.ProductID("99901"), box.ID)
	assert.True(t, box.IsBox)
	assert.Equal(t, []string{"Custom"}, box.Tags)
	require.Len(t, box.BoxPicks, 3)
	require.Len(t, box.BoxPicks[1].Options, 2)
	assert.Equal(t, "200", box.BoxPicks[1].Options[0].ID)
	assert.Equal(t, "201", box.BoxPicks[1].Options[1].ID)

	plain := products[1]
	require.Len(t, plain.Tiers, 3)
	assert.Equal(t, []string{"100G", "50G", "25G"}, []string{plain.Tiers[0].Label, plain.Tiers[1].Label, plain.Tiers[2].Label})
	assert.True(t, decimal.NewFromInt(270).Equal(plain.Tiers[1].Price))

	// the stored rows must build the same catalog as the embedded file
	cat, err := catalog.Load(ctx, catalog.DatabaseSource{Repo: repo})
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestProductRepository_ReplaceAllOverwrites(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, demoProducts(t)))
	require.NoError(t, repo.ReplaceAll(ctx, demoProducts(t)[1:]))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Len(t, products[0].Tiers, 3)
}

func TestProductRepository_FindByID(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceAll(ctx, demoProducts(t)))

	p, err := repo.FindByID(ctx, "3001")
	require.NoError(t, err)
	assert.Equal(t, "Static Drugs", p.Title)
	assert.Len(t, p.Tiers, 3)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
