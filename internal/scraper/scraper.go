package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/evspare-scraper/internal/models"
	"github.com/maltedev/evspare-scraper/internal/storage"
)

var ErrInvalidURL = errors.New("invalid URL")

// PageFetcher retrieves the storefront markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ImageFetcher retrieves image bytes.
type ImageFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ImageWriter persists a downloaded image under the image directory.
type ImageWriter interface {
	EnsureDir() error
	WriteImage(filename string, data []byte) error
}

// Sink serializes the extracted records.
type Sink interface {
	Write(products []models.Product) (*storage.Result, error)
}

// RunHook is invoked after the outputs have been written.
type RunHook interface {
	Name() string
	AfterRun(ctx context.Context, result *RunResult) error
}
