package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maltedev/evspare-scraper/internal/models"
)

type Paths struct {
	ImageDir    string
	CSVPath     string
	JSONPath    string
	ArchivePath string
}

// Result lists what the sink wrote. CSVPath is empty when the tabular
// output was skipped.
type Result struct {
	CSVPath       string
	JSONPath      string
	ArchivePath   string
	ArchivedFiles int
}

// Sink writes the record sequence as CSV and JSON and bundles the image
// directory into a flat zip archive.
type Sink struct {
	paths  Paths
	logger *slog.Logger
}

func NewSink(paths Paths, logger *slog.Logger) *Sink {
	return &Sink{
		paths:  paths,
		logger: logger.With("component", "sink"),
	}
}

func (s *Sink) Write(products []models.Product) (*Result, error) {
	result := &Result{}

	if len(products) == 0 {
		s.logger.Warn("no products found, skipping CSV output", "path", s.paths.CSVPath)
	} else {
		if err := WriteCSV(s.paths.CSVPath, products); err != nil {
			return nil, err
		}
		result.CSVPath = s.paths.CSVPath
		s.logger.Info("CSV written", "path", s.paths.CSVPath, "rows", len(products))
	}

	if err := WriteJSON(s.paths.JSONPath, products); err != nil {
		return nil, err
	}
	result.JSONPath = s.paths.JSONPath
	s.logger.Info("JSON written", "path", s.paths.JSONPath)

	n, err := ArchiveDir(s.paths.ArchivePath, s.paths.ImageDir)
	if err != nil {
		return nil, err
	}
	result.ArchivePath = s.paths.ArchivePath
	result.ArchivedFiles = n
	s.logger.Info("images archived", "path", s.paths.ArchivePath, "files", n)

	return result, nil
}

// writeFileAtomic writes through a temp file and renames it into place.
func writeFileAtomic(filename string, data []byte) error {
	tmpFile := filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(filename), err)
	}
	return nil
}
