package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maltedev/evspare-scraper/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CatalogProduct is a product as stored in the catalog tables. Price and
// GSTRate are nil when the scraped text did not hold a number.
type CatalogProduct struct {
	ID            int       `json:"id"`
	Key           string    `json:"key"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Description   string    `json:"description"`
	Price         *int64    `json:"price"`
	Currency      string    `json:"currency"`
	Unit          string    `json:"unit"`
	GSTRate       *int32    `json:"gst_rate"`
	ImageFilename string    `json:"image_filename"`
	Tags          []string  `json:"tags"`
	Category      *Category `json:"category,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductFilter struct {
	CategorySlug string
	Search       string
	Page         int
	Limit        int
}

// Normalize applies the default page and limit.
func (f ProductFilter) Normalize() ProductFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ImportStats struct {
	Categories int
	Products   int
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and turns every run of other characters into a
// single hyphen: "POWER CONNECTOR (IEC & XTs)" -> "power-connector-iec-xts".
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ProductKey is the catalog identity of a scraped record.
func ProductKey(p *models.Product) string {
	return Slugify(p.Key())
}

// ParsePrice reads the scraped digit string. Anything else yields nil.
func ParsePrice(price string) *int64 {
	v, err := strconv.ParseInt(price, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseGSTRate turns "18%" into 18.
func ParseGSTRate(gst string) *int32 {
	v, err := strconv.ParseInt(strings.TrimSuffix(gst, "%"), 10, 32)
	if err != nil {
		return nil
	}
	r := int32(v)
	return &r
}

// ImportCatalog upserts the categories and products of one run in a single
// transaction. Products sharing a key keep the last record's values.
func (db *DB) ImportCatalog(ctx context.Context, runID uuid.UUID, products []models.Product) (*ImportStats, error) {
	stats := &ImportStats{}

	err := db.Transaction(ctx, func(tx pgx.Tx) error {
		categoryIDs := make(map[string]int)

		for i := range products {
			p := &products[i]

			var categoryID *int
			if p.Category != "" {
				slug := Slugify(p.Category)
				id, ok := categoryIDs[slug]
				if !ok {
					var err error
					id, err = upsertCategory(ctx, tx, p.Category, slug)
					if err != nil {
						return err
					}
					categoryIDs[slug] = id
					stats.Categories++
				}
				categoryID = &id
			}

			if err := upsertProduct(ctx, tx, runID, i, p, categoryID); err != nil {
				return err
			}
			stats.Products++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import catalog: %w", err)
	}

	return stats, nil
}

func upsertCategory(ctx context.Context, tx pgx.Tx, name, slug string) (int, error) {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id`

	var id int
	if err := tx.QueryRow(ctx, query, name, slug).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert category %q: %w", name, err)
	}
	return id, nil
}

func upsertProduct(ctx context.Context, tx pgx.Tx, runID uuid.UUID, position int, p *models.Product, categoryID *int) error {
	query := `
		INSERT INTO products (
			product_key, name, code, description, price, currency, unit,
			gst_rate, image_filename, tags, category_id, position, run_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (product_key) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			unit = EXCLUDED.unit,
			gst_rate = EXCLUDED.gst_rate,
			image_filename = EXCLUDED.image_filename,
			tags = EXCLUDED.tags,
			category_id = EXCLUDED.category_id,
			position = EXCLUDED.position,
			run_id = EXCLUDED.run_id,
			updated_at = CURRENT_TIMESTAMP`

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := tx.Exec(ctx, query,
		ProductKey(p), p.Name, p.Code, p.Description, ParsePrice(p.Price), p.Currency, p.Unit,
		ParseGSTRate(p.GST), p.ImageFilename, tags, categoryID, position, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %q: %w", p.Name, err)
	}
	return nil
}

const productColumns = `
	p.id, p.product_key, p.name, p.code, p.description, p.price, p.currency, p.unit,
	p.gst_rate, p.image_filename, p.tags, p.updated_at, c.id, c.name, c.slug`

func scanProduct(row pgx.Row) (*CatalogProduct, error) {
	var (
		p            CatalogProduct
		categoryID   *int
		categoryName *string
		categorySlug *string
	)

	err := row.Scan(
		&p.ID, &p.Key, &p.Name, &p.Code, &p.Description, &p.Price, &p.Currency, &p.Unit,
		&p.GSTRate, &p.ImageFilename, &p.Tags, &p.UpdatedAt, &categoryID, &categoryName, &categorySlug,
	)
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		p.Category = &Category{ID: *categoryID}
		if categoryName != nil {
			p.Category.Name = *categoryName
		}
		if categorySlug != nil {
			p.Category.Slug = *categorySlug
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// ListProducts returns products in page order. Search matches name, code
// and description case-insensitively.
func (db *DB) ListProducts(ctx context.Context, filter ProductFilter) ([]CatalogProduct, error) {
	filter = filter.Normalize()

	query := `SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE ($1 = '' OR c.slug = $1)
		  AND ($2 = '' OR p.name ILIKE '%' || $2 || '%'
		               OR p.code ILIKE '%' || $2 || '%'
		               OR p.description ILIKE '%' || $2 || '%')
		ORDER BY p.position, p.id
		LIMIT $3 OFFSET $4`

	rows, err := db.Query(ctx, query, filter.CategorySlug, filter.Search, filter.Limit, filter.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]CatalogProduct, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

func (db *DB) GetProduct(ctx context.Context, key string) (*CatalogProduct, error) {
	query := `SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.product_key = $1`

	p, err := scanProduct(db.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", key, err)
	}
	return p, nil
}

func (db *DB) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := db.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}
