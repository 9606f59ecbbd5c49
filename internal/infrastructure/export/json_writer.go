package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// JSONWriter renders the finished newsletter as a dated JSON file.
type JSONWriter struct {
	outputDir string
}

var _ ports.Exporter = (*JSONWriter)(nil)

// NewJSONWriter stores newsletters under the given directory.
func NewJSONWriter(outputDir string) *JSONWriter {
	if outputDir == "" {
		outputDir = "."
	}
	return &JSONWriter{outputDir: outputDir}
}

type newsletterItem struct {
	Source     string `json:"source"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Published  string `json:"published,omitempty"`
	Score      int    `json:"score"`
	Summary    string `json:"summary"`
	Provenance string `json:"content_provenance"`
}

type newsletterFile struct {
	Date  string           `json:"date"`
	Items []newsletterItem `json:"items"`
	Count int              `json:"count"`
}

// Export writes newsletter-YYYY-MM-DD.json and returns its path.
func (w *JSONWriter) Export(_ context.Context, date time.Time, items []domain.Candidate) (string, error) {
	doc := newsletterFile{
		Date:  date.Format("2006-01-02"),
		Items: make([]newsletterItem, 0, len(items)),
		Count: len(items),
	}
	for _, c := range items {
		item := newsletterItem{
			Source:     c.Source,
			Title:      c.Title,
			Link:       c.Link,
			Score:      c.AdjustedScore,
			Summary:    c.Summary,
			Provenance: string(c.ContentProvenance),
		}
		if !c.PublishedAt.IsZero() {
			item.Published = c.PublishedAt.Format(time.RFC3339)
		}
		doc.Items = append(doc.Items, item)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal newsletter: %w", err)
	}

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("newsletter-%s.json", doc.Date))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write newsletter: %w", err)
	}

	return path, nil
}
