package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"MediaCurator/internal/domain"
)

// Strategy is one content-resolution stage. Resolve returns the content and
// whether the stage succeeded. A stage may return a partial extract together
// with ok=false; the chain offers that partial to later stages through
// Candidate.ResolvedContent and falls back to it before synthesizing
// title-only content.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, c domain.Candidate) (content string, ok bool)
}

// Chain tries strategies in order and returns the first success. It never
// fails: a kept partial extract wins over nothing, and when every stage comes
// up empty it synthesizes content from the title and source. The title-only
// terminal stage lives in the chain itself; an always-succeeding strategy
// would shadow the partial fallback.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain assembles the resolution chain in fallback order.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Resolve produces usable content plus its provenance for the candidate.
func (ch *Chain) Resolve(ctx context.Context, c domain.Candidate) (string, domain.Provenance) {
	var partial string

	for _, strategy := range ch.strategies {
		scoped := c
		scoped.ResolvedContent = partial

		content, ok := strategy.Resolve(ctx, scoped)
		if ok {
			ch.debug("content resolved", "stage", strategy.Name(), "title", c.Title, "chars", len(content))
			return content, domain.Provenance(strategy.Name())
		}
		if content != "" {
			partial = content
		}
	}

	if partial != "" {
		ch.debug("falling back to partial fulltext", "title", c.Title, "chars", len(partial))
		return partial, domain.ProvenanceFulltext
	}

	ch.debug("no content resolvable, synthesizing from title", "title", c.Title)
	return titleOnlyContent(c), domain.ProvenanceTitleOnly
}

func (ch *Chain) debug(msg string, args ...any) {
	if ch.logger != nil {
		ch.logger.Debug(msg, args...)
	}
}

// FeedDescription uses the feed-supplied description when it is long enough
// to summarize from. The winning stage issues no network calls at all.
type FeedDescription struct {
	MinLen int
}

// Name implements Strategy.
func (FeedDescription) Name() string { return string(domain.ProvenanceFeed) }

// Resolve implements Strategy.
func (f FeedDescription) Resolve(_ context.Context, c domain.Candidate) (string, bool) {
	if utf8.RuneCountInString(c.RawDescription) > f.MinLen {
		return c.RawDescription, true
	}
	return "", false
}

func titleOnlyContent(c domain.Candidate) string {
	return fmt.Sprintf("Title: %s\nSource: %s", c.Title, c.Source)
}
