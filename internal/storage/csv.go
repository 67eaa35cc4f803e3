package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/maltedev/evspare-scraper/internal/models"
)

func WriteCSV(filename string, products []models.Product) error {
	data, err := EncodeCSV(products)
	if err != nil {
		return err
	}
	return writeFileAtomic(filename, data)
}

// EncodeCSV renders a header row plus one row per product. Tags are stored
// as a JSON array in a single cell.
func EncodeCSV(products []models.Product) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true

	if err := writer.Write(models.Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range products {
		tags, err := json.Marshal(nonNil(p.Tags))
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags for %q: %w", p.Name, err)
		}

		record := []string{
			p.Name,
			p.Code,
			p.Category,
			p.Price,
			p.Currency,
			p.Unit,
			p.GST,
			p.Description,
			p.ImageFilename,
			string(tags),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for %q: %w", p.Name, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
