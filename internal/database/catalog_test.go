package database

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/maltedev/evspare-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DISC PAD & LEVERS", "disc-pad-levers"},
		{"POWER CONNECTOR (IEC & XTs)", "power-connector-iec-xts"},
		{"HST (HEAT SHRINK TUBE)", "hst-heat-shrink-tube"},
		{"FC-100", "fc-100"},
		{"  --PVC--  ", "pvc"},
		{"₹", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestProductKey(t *testing.T) {
	withCode := models.Product{Name: "[A1] FAST CHARGER (FC-100)", Code: "FC-100"}
	withoutCode := models.Product{Name: "HUB MOTOR KIT"}

	assert.Equal(t, "fc-100", ProductKey(&withCode))
	assert.Equal(t, "hub-motor-kit", ProductKey(&withoutCode))
}

func TestParsePrice(t *testing.T) {
	require.NotNil(t, ParsePrice("1500"))
	assert.Equal(t, int64(1500), *ParsePrice("1500"))
	assert.Nil(t, ParsePrice(""))
	assert.Nil(t, ParsePrice("1,500"))
}

func TestParseGSTRate(t *testing.T) {
	require.NotNil(t, ParseGSTRate("18%"))
	assert.Equal(t, int32(18), *ParseGSTRate("18%"))
	assert.Equal(t, int32(5), *ParseGSTRate("5"))
	assert.Nil(t, ParseGSTRate(""))
	assert.Nil(t, ParseGSTRate("GST"))
}

func TestProductFilter_Normalize(t *testing.T) {
	f := ProductFilter{Search: "  charger "}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "charger", f.Search)
	assert.Equal(t, 0, f.Offset())

	f = ProductFilter{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 200, f.Offset())
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := New(ctx, Config{DSN: dsn, MaxConns: 2})
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))

	_, err = db.Exec(ctx, `TRUNCATE products, categories RESTART IDENTITY`)
	require.NoError(t, err)

	t.Cleanup(db.Close)
	return db
}

func TestImportCatalog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	charger := models.NewProduct("[A1] FAST CHARGER (FC-100)", "INR", "PCS")
	charger.Code = "FC-100"
	charger.Category = "CHARGERS"
	charger.Price = "1500"
	charger.GST = "18%"
	charger.ImageFilename = "FC-100.jpg"

	kit := models.NewProduct("HUB MOTOR KIT", "INR", "PCS")
	kit.Category = "MOTOR & ACCESSORIES"

	loose := models.NewProduct("Brake cable rear", "INR", "PCS")

	stats, err := db.ImportCatalog(ctx, uuid.New(), []models.Product{charger, kit, loose})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 3, stats.Products)

	got, err := db.GetProduct(ctx, "fc-100")
	require.NoError(t, err)
	assert.Equal(t, "[A1] FAST CHARGER (FC-100)", got.Name)
	require.NotNil(t, got.Price)
	assert.Equal(t, int64(1500), *got.Price)
	require.NotNil(t, got.GSTRate)
	assert.Equal(t, int32(18), *got.GSTRate)
	require.NotNil(t, got.Category)
	assert.Equal(t, "chargers", got.Category.Slug)

	noPrice, err := db.GetProduct(ctx, "hub-motor-kit")
	require.NoError(t, err)
	assert.Nil(t, noPrice.Price)
	assert.Nil(t, noPrice.GSTRate)

	_, err = db.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	all, err := db.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "fc-100", all[0].Key)
	assert.Nil(t, all[2].Category)

	motors, err := db.ListProducts(ctx, ProductFilter{CategorySlug: "motor-accessories"})
	require.NoError(t, err)
	require.Len(t, motors, 1)
	assert.Equal(t, "HUB MOTOR KIT", motors[0].Name)

	search, err := db.ListProducts(ctx, ProductFilter{Search: "fc-1"})
	require.NoError(t, err)
	require.Len(t, search, 1)

	categories, err := db.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "CHARGERS", categories[0].Name)
}

func TestImportCatalog_LastDuplicateWins(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := models.NewProduct("SILICON CABLE 14AWG", "INR", "PCS")
	first.Price = "90"
	second := first
	second.Price = "95"

	stats, err := db.ImportCatalog(ctx, uuid.New(), []models.Product{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Products)

	all, err := db.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(95), *all[0].Price)
}
