package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"MediaCurator/internal/dedup"
	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
	"MediaCurator/internal/resolve"
	"MediaCurator/internal/scoring"
)

const minSummarizableLen = 50

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.FeedSource
	Scorer     *scoring.Scorer
	Detector   *dedup.Detector
	Resolver   *resolve.Chain
	Summarizer ports.Summarizer
	Exporter   ports.Exporter
	Notifier   ports.Notifier
	Archive    ports.Archive
	Rules      ports.RuleStore
	Region     string

	MinScore     int
	ScoreDelay   time.Duration
	SummaryDelay time.Duration
	Logger       *slog.Logger
}

// Pipeline implements one curation run: score, gate, dedup, resolve,
// summarize, export, archive, notify. Candidates are processed strictly
// sequentially; per-candidate failures never abort the batch.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes a full curation pass for the given day.
func (p *Pipeline) Run(ctx context.Context, day time.Time) error {
	if p.deps.Source == nil {
		return nil
	}

	ruleSet := p.loadRules()

	candidates, err := p.deps.Source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch feeds: %w", err)
	}
	p.info("candidates fetched", "count", len(candidates))

	var survivors []*domain.Candidate
	for i := range candidates {
		c := &candidates[i]

		if p.deps.Scorer != nil {
			p.deps.Scorer.Score(ctx, c, ruleSet)
		} else {
			c.BaseScore = domain.NeutralScore
			c.AdjustedScore = domain.NeutralScore
		}
		p.sleep(ctx, p.deps.ScoreDelay)

		p.debug("candidate scored",
			"source", c.Source,
			"title", c.Title,
			"base", c.BaseScore,
			"adjusted", c.AdjustedScore,
			"rules", c.AppliedRules)

		if c.AdjustedScore < p.deps.MinScore {
			continue
		}

		if p.deps.Detector != nil && p.deps.Detector.IsDuplicate(ctx, *c) {
			p.info("duplicate suppressed", "source", c.Source, "title", c.Title, "url", c.Link)
			continue
		}

		survivors = append(survivors, c)
	}

	p.info("relevance gate passed", "survivors", len(survivors), "min_score", p.deps.MinScore)
	if len(survivors) == 0 {
		return nil
	}

	for _, c := range survivors {
		if p.deps.Resolver != nil {
			c.ResolvedContent, c.ContentProvenance = p.deps.Resolver.Resolve(ctx, *c)
		} else {
			c.ResolvedContent = c.RawDescription
			c.ContentProvenance = domain.ProvenanceFeed
		}
		c.Summary = p.summarize(ctx, c)
		p.sleep(ctx, p.deps.SummaryDelay)

		p.debug("candidate summarized",
			"title", c.Title,
			"provenance", c.ContentProvenance,
			"summary_len", len(c.Summary))
	}

	items := make([]domain.Candidate, 0, len(survivors))
	for _, c := range survivors {
		items = append(items, *c)
	}

	if p.deps.Exporter != nil {
		path, err := p.deps.Exporter.Export(ctx, day, items)
		if err != nil {
			return fmt.Errorf("export newsletter: %w", err)
		}
		p.info("newsletter exported", "path", path, "items", len(items))
	}

	p.archiveItems(ctx, day, items)

	if p.deps.Notifier != nil {
		if err := p.deps.Notifier.PublishDigest(ctx, day, len(items)); err != nil {
			p.warn("digest notification failed", "error", err)
		}
	}

	return nil
}

func (p *Pipeline) loadRules() domain.RuleSet {
	if p.deps.Rules == nil {
		return domain.RuleSet{}
	}
	set, err := p.deps.Rules.Load()
	if err != nil {
		p.warn("rule set unavailable, scoring on base scores only", "error", err)
		return domain.RuleSet{}
	}
	p.info("rule set loaded", "version", set.Version, "rules", len(set.Rules))
	return set
}

func (p *Pipeline) summarize(ctx context.Context, c *domain.Candidate) string {
	if len(c.ResolvedContent) < minSummarizableLen {
		return fmt.Sprintf("%s - details only in the original article.", c.Title)
	}
	if p.deps.Summarizer == nil {
		return excerpt(c.ResolvedContent)
	}

	summary, err := p.deps.Summarizer.Summarize(ctx, c.Title, c.ResolvedContent)
	if err != nil || summary == "" {
		p.warn("summarization failed, using excerpt", "title", c.Title, "error", err)
		return excerpt(c.ResolvedContent)
	}
	return summary
}

func (p *Pipeline) archiveItems(ctx context.Context, day time.Time, items []domain.Candidate) {
	if p.deps.Archive == nil {
		return
	}
	for _, item := range items {
		rec := domain.ArchiveRecord{
			URL:            item.Link,
			Title:          item.Title,
			Source:         item.Source,
			Region:         p.deps.Region,
			PublishedDate:  item.PublishedAt,
			FirstSentDate:  day,
			RelevanceScore: item.AdjustedScore,
			Summary:        item.Summary,
		}
		if err := p.deps.Archive.Insert(ctx, rec); err != nil {
			p.warn("archive insert failed", "url", item.Link, "error", err)
		}
	}
}

func excerpt(content string) string {
	const limit = 300
	if len(content) <= limit {
		return content
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Warn(msg, args...)
	}
}
