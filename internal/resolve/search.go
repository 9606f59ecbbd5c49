package resolve

import (
	"context"
	"strings"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// SearchContext recovers context for paywalled or unfetchable articles by
// querying a web-search collaborator with the candidate title. When the
// fulltext stage left a partial extract it is kept in front of the snippets.
// A nil searcher (no API credential) makes the stage a silent no-op.
type SearchContext struct {
	Searcher    ports.Searcher
	MaxResults  int
	QuerySuffix string
}

// Name implements Strategy.
func (*SearchContext) Name() string { return string(domain.ProvenanceSearchContext) }

// Resolve implements Strategy.
func (s *SearchContext) Resolve(ctx context.Context, c domain.Candidate) (string, bool) {
	if s.Searcher == nil {
		return "", false
	}

	query := c.Title
	if s.QuerySuffix != "" {
		query += " " + s.QuerySuffix
	}

	max := s.MaxResults
	if max <= 0 {
		max = 3
	}

	results, err := s.Searcher.Search(ctx, query, max)
	if err != nil || len(results) == 0 {
		return "", false
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
			snippets = append(snippets, snippet)
		}
	}
	if len(snippets) == 0 {
		return "", false
	}

	joined := strings.Join(snippets, "\n\n")
	if partial := c.ResolvedContent; partial != "" {
		return partial + "\n\nAdditional context from web search:\n" + joined, true
	}
	return "Topic: " + c.Title + "\n\nContext from web search:\n" + joined, true
}
