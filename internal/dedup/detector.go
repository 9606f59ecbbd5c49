package dedup

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// DefaultThreshold is the Jaccard similarity above which two titles under
// the same URL count as the same story.
const DefaultThreshold = 0.85

const minTokenLen = 3

// Detector checks candidates against the archive of delivered items. An
// unavailable archive fails open: every candidate passes.
type Detector struct {
	archive   ports.Archive
	threshold float64
	logger    *slog.Logger
}

// New builds a detector; a threshold <= 0 selects DefaultThreshold.
func New(archive ports.Archive, threshold float64, logger *slog.Logger) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{archive: archive, threshold: threshold, logger: logger}
}

// IsDuplicate reports whether the candidate repeats an archived story.
// Records under a different URL never count; records under the same URL
// count on exact title equality or near-identical normalized titles. A same
// URL with a genuinely different title is treated as an update and passes.
func (d *Detector) IsDuplicate(ctx context.Context, c domain.Candidate) bool {
	if d.archive == nil {
		return false
	}

	records, err := d.archive.FindByURL(ctx, c.Link)
	if err != nil {
		d.warn("archive lookup failed, passing candidate through", "url", c.Link, "error", err)
		return false
	}
	if len(records) == 0 {
		return false
	}

	for _, rec := range records {
		if rec.Title == c.Title {
			d.debug("duplicate: exact title match", "url", c.Link, "title", c.Title)
			return true
		}
		if sim := TitleSimilarity(rec.Title, c.Title); sim >= d.threshold {
			d.debug("duplicate: near-identical title",
				"url", c.Link, "title", c.Title, "archived", rec.Title, "similarity", sim)
			return true
		}
	}

	d.debug("known url with new title, treating as update", "url", c.Link, "title", c.Title)
	return false
}

// TitleSimilarity computes the Jaccard similarity of the normalized word
// sets of two titles: lowercase, punctuation stripped, tokens shorter than
// three characters dropped.
func TitleSimilarity(a, b string) float64 {
	setA := normalizeWords(a)
	setB := normalizeWords(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func normalizeWords(title string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token) < minTokenLen {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

func (d *Detector) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *Detector) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
