package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/maltedev/evspare-scraper/internal/models"
)

func WriteJSON(filename string, products []models.Product) error {
	data, err := EncodeJSON(products)
	if err != nil {
		return err
	}
	return writeFileAtomic(filename, data)
}

// EncodeJSON renders the records as an indented array. Non-ASCII text such
// as the rupee sign is kept as UTF-8 and HTML characters are not escaped.
func EncodeJSON(products []models.Product) ([]byte, error) {
	out := make([]models.Product, len(products))
	for i, p := range products {
		p.Tags = nonNil(p.Tags)
		out[i] = p
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	return buf.Bytes(), nil
}
