package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/evspare-scraper/internal/models"
	"github.com/maltedev/evspare-scraper/internal/parser"
	"github.com/maltedev/evspare-scraper/internal/storage"
)

// RunResult describes one completed scrape.
type RunResult struct {
	RunID      uuid.UUID
	OriginURL  string
	StartedAt  time.Time
	FinishedAt time.Time
	Products   []models.Product
	Output     *storage.Result
}

func (r *RunResult) ImageCount() int {
	n := 0
	for i := range r.Products {
		if r.Products[i].HasImage() {
			n++
		}
	}
	return n
}

// Categories returns the distinct category names in first-seen order.
func (r *RunResult) Categories() []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range r.Products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	return categories
}

// Pipeline runs fetch, parse, extract and write once, in that order.
type Pipeline struct {
	origin    string
	fetcher   PageFetcher
	parser    parser.Parser
	extractor *ProductExtractor
	images    ImageWriter
	sink      Sink
	hooks     []RunHook
	logger    *slog.Logger
}

func NewPipeline(origin string, fetcher PageFetcher, p parser.Parser, extractor *ProductExtractor, images ImageWriter, sink Sink, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		origin:    origin,
		fetcher:   fetcher,
		parser:    p,
		extractor: extractor,
		images:    images,
		sink:      sink,
		logger:    logger.With("component", "pipeline"),
	}
}

// AddHook registers a step that runs after the outputs are written.
func (p *Pipeline) AddHook(h RunHook) {
	p.hooks = append(p.hooks, h)
}

// Run fails only when the page cannot be fetched or parsed, or the outputs
// cannot be written. Hook failures are logged.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:     uuid.New(),
		OriginURL: p.origin,
		StartedAt: time.Now(),
	}

	if err := p.images.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	p.logger.Info("fetching storefront", "url", p.origin, "run_id", result.RunID)
	html, err := p.fetcher.Fetch(ctx, p.origin)
	if err != nil {
		return nil, err
	}

	doc, err := p.parser.Parse(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	result.Products = p.extractor.Extract(ctx, doc)
	p.logger.Info("extracted products", "count", len(result.Products), "images", result.ImageCount())

	out, err := p.sink.Write(result.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to write outputs: %w", err)
	}
	result.Output = out
	result.FinishedAt = time.Now()

	for _, h := range p.hooks {
		if err := h.AfterRun(ctx, result); err != nil {
			p.logger.Error("post-run step failed", "step", h.Name(), "error", err)
		}
	}

	return result, nil
}
