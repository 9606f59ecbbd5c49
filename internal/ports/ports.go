package ports

import (
	"context"
	"time"

	"MediaCurator/internal/domain"
)

// FeedSource pulls fresh candidates from the configured feeds.
type FeedSource interface {
	Fetch(ctx context.Context) ([]domain.Candidate, error)
}

// Classifier obtains a base relevance score (1-10) for a candidate.
type Classifier interface {
	Score(ctx context.Context, title, description string) (int, error)
}

// Summarizer produces a short summary from resolved content.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

// Searcher queries an external web-search service for context snippets.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]domain.SearchResult, error)
}

// Archive is the persistent store of previously delivered items.
type Archive interface {
	FindByURL(ctx context.Context, url string) ([]domain.ArchiveRecord, error)
	Insert(ctx context.Context, rec domain.ArchiveRecord) error
}

// FeedbackStore reads accumulated user feedback in bulk.
type FeedbackStore interface {
	LoadSince(ctx context.Context, cutoff time.Time) ([]domain.FeedbackRecord, error)
}

// RuleStore loads and replaces the persisted rule set.
type RuleStore interface {
	Load() (domain.RuleSet, error)
	Save(set domain.RuleSet) error
}

// Exporter writes the finished newsletter and returns its location.
type Exporter interface {
	Export(ctx context.Context, date time.Time, items []domain.Candidate) (string, error)
}

// Notifier announces a finished newsletter to recipients.
type Notifier interface {
	PublishDigest(ctx context.Context, date time.Time, count int) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
