package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"MediaCurator/internal/config"
	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

const (
	feedUserAgent      = "Mozilla/5.0 (compatible; MediaCurator/1.0)"
	maxDescriptionLen  = 500
	defaultMaxPerFeed  = 20
	defaultFeedTimeout = 20 * time.Second
)

// RSSSource polls the configured RSS feeds and turns entries into
// candidates. A broken feed is logged and skipped; the poll only fails when
// every feed fails.
type RSSSource struct {
	parser     *gofeed.Parser
	feeds      []config.FeedConfig
	maxPerFeed int
	logger     *slog.Logger
}

var _ ports.FeedSource = (*RSSSource)(nil)

// NewRSSSource builds a source over the configured feed list.
func NewRSSSource(feeds []config.FeedConfig, maxPerFeed int, logger *slog.Logger) *RSSSource {
	if maxPerFeed <= 0 {
		maxPerFeed = defaultMaxPerFeed
	}

	parser := gofeed.NewParser()
	parser.UserAgent = feedUserAgent

	return &RSSSource{
		parser:     parser,
		feeds:      feeds,
		maxPerFeed: maxPerFeed,
		logger:     logger,
	}
}

// Fetch polls every feed once and aggregates the candidates.
func (s *RSSSource) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	var aggregated []domain.Candidate
	failed := 0

	for _, feed := range s.feeds {
		fetchCtx, cancel := context.WithTimeout(ctx, defaultFeedTimeout)
		parsed, err := s.parser.ParseURLWithContext(feed.URL, fetchCtx)
		cancel()
		if err != nil {
			s.warn("feed unavailable, skipping", "feed", feed.Name, "url", feed.URL, "error", err)
			failed++
			continue
		}

		count := 0
		for _, item := range parsed.Items {
			if count >= s.maxPerFeed {
				break
			}
			candidate, ok := toCandidate(feed.Name, item)
			if !ok {
				continue
			}
			aggregated = append(aggregated, candidate)
			count++
		}
		s.debug("feed polled", "feed", feed.Name, "candidates", count)
	}

	if len(s.feeds) > 0 && failed == len(s.feeds) {
		return nil, fmt.Errorf("all %d feeds failed", failed)
	}

	s.debug("feed poll done", "total_candidates", len(aggregated))
	return aggregated, nil
}

func toCandidate(sourceName string, item *gofeed.Item) (domain.Candidate, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Candidate{}, false
	}

	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = strings.TrimSpace(item.Content)
	}
	description = truncateRunes(description, maxDescriptionLen)

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	return domain.Candidate{
		Source:         sourceName,
		Title:          title,
		RawDescription: description,
		Link:           link,
		PublishedAt:    publishedAt,
	}, true
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func (s *RSSSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *RSSSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
