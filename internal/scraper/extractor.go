package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maltedev/evspare-scraper/internal/models"
	"github.com/maltedev/evspare-scraper/internal/parser"
)

// ProductExtractor turns a parsed storefront page into product records.
type ProductExtractor struct {
	origin   string
	currency string
	unit     string
	images   ImageFetcher
	writer   ImageWriter
	logger   *slog.Logger
}

type ExtractorOptions struct {
	OriginURL string
	Currency  string
	Unit      string
}

func NewProductExtractor(opts ExtractorOptions, images ImageFetcher, writer ImageWriter, logger *slog.Logger) *ProductExtractor {
	return &ProductExtractor{
		origin:   opts.OriginURL,
		currency: opts.Currency,
		unit:     opts.Unit,
		images:   images,
		writer:   writer,
		logger:   logger.With("component", "product_extractor"),
	}
}

// extraction is the accumulator threaded through one pass over the page.
type extraction struct {
	category string
	products []models.Product
}

// Extract walks the candidate elements in document order. Image downloads
// happen inline, one product at a time.
func (pe *ProductExtractor) Extract(ctx context.Context, doc *parser.Document) []models.Product {
	acc := extraction{products: make([]models.Product, 0)}
	for _, node := range doc.FindAll(CandidateTags...) {
		acc = pe.step(ctx, acc, node)
	}

	pe.logger.Info("extraction finished", "products", len(acc.products))
	return acc.products
}

func (pe *ProductExtractor) step(ctx context.Context, acc extraction, node parser.Node) extraction {
	text := node.Text()

	// a header never doubles as a product
	if IsCategoryHeader(text) {
		acc.category = text
		return acc
	}

	if !IsProductEntry(text) {
		return acc
	}

	acc.products = append(acc.products, pe.buildProduct(ctx, node, text, acc.category))
	return acc
}

func (pe *ProductExtractor) buildProduct(ctx context.Context, node parser.Node, name, category string) models.Product {
	product := models.NewProduct(name, pe.currency, pe.unit)
	product.Code = ExtractCode(name)
	product.Category = category

	priceText := findPriceText(node)
	product.GST = ExtractGST(priceText)
	product.Price = ExtractPrice(priceText)

	if src := findImageSource(node); src != "" {
		imageURL := ResolveImageURL(pe.origin, src)
		product.ImageFilename = pe.saveImage(ctx, &product, imageURL)
	}

	return product
}

// findPriceText scans following siblings only, never backwards.
func findPriceText(node parser.Node) string {
	for sib, ok := node.Next(); ok; sib, ok = sib.Next() {
		if text := sib.Text(); HasPrice(text) {
			return text
		}
	}
	return ""
}

// findImageSource checks the previous sibling, then the next sibling, then
// the node itself for a descendant <img>. The first <img> found decides,
// even when it carries no src.
func findImageSource(node parser.Node) string {
	var img parser.Node
	found := false

	if prev, ok := node.Prev(); ok {
		img, found = prev.Find("img")
	}
	if !found {
		if next, ok := node.Next(); ok {
			img, found = next.Find("img")
		}
	}
	if !found {
		img, found = node.Find("img")
	}
	if !found {
		return ""
	}

	src, _ := img.Attr("src")
	return strings.TrimSpace(src)
}

// saveImage downloads and stores the image, returning the stored file name
// or "" when the download or write failed.
func (pe *ProductExtractor) saveImage(ctx context.Context, product *models.Product, imageURL string) string {
	filename := ImageFilename(product.Code, product.Name, imageURL)

	data, err := pe.images.FetchBytes(ctx, imageURL)
	if err != nil {
		pe.logger.Warn("failed to download image", "product", product.Name, "url", imageURL, "error", err)
		return ""
	}

	if err := pe.writer.WriteImage(filename, data); err != nil {
		pe.logger.Warn("failed to save image", "product", product.Name, "file", filename, "error", err)
		return ""
	}

	pe.logger.Debug("image saved", "product", product.Name, "file", filename)
	return filename
}
