package scoring

import (
	"context"
	"log/slog"
	"strings"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// Scorer obtains a base relevance score from the classifier and applies the
// active rule set deterministically on top of it.
//
// Rule application is cumulative: every matching rule fires, in rule-set
// order, and the running score is clamped to [1,10] after each adjustment so
// a large malus cannot be banked and offset by a later bonus.
type Scorer struct {
	classifier ports.Classifier
	themes     map[string][]string
	logger     *slog.Logger
}

// New wires the classifier and the theme keyword taxonomy.
func New(classifier ports.Classifier, themes map[string][]string, logger *slog.Logger) *Scorer {
	return &Scorer{
		classifier: classifier,
		themes:     themes,
		logger:     logger,
	}
}

// Score fills BaseScore, AdjustedScore and AppliedRules on the candidate.
// A failing or unparseable classifier response degrades to the neutral score;
// Score itself never fails.
func (s *Scorer) Score(ctx context.Context, c *domain.Candidate, set domain.RuleSet) {
	base := domain.NeutralScore
	if s.classifier != nil {
		value, err := s.classifier.Score(ctx, c.Title, c.RawDescription)
		if err != nil {
			s.warn("classifier failed, using neutral score", "title", c.Title, "error", err)
		} else {
			base = domain.ClampScore(value)
		}
	}

	c.BaseScore = base
	c.AdjustedScore = base
	c.AppliedRules = nil

	title := strings.ToLower(c.Title)
	for _, rule := range set.Rules {
		if !s.matches(rule, c.Source, title) {
			continue
		}
		c.AdjustedScore = domain.ClampScore(c.AdjustedScore + rule.Adjustment)
		c.AppliedRules = append(c.AppliedRules, rule.Ref())
	}

	if len(c.AppliedRules) > 0 {
		s.debug("rules applied",
			"title", c.Title,
			"base", c.BaseScore,
			"adjusted", c.AdjustedScore,
			"rules", strings.Join(c.AppliedRules, ", "))
	}
}

func (s *Scorer) matches(rule domain.Rule, source, lowerTitle string) bool {
	switch {
	case rule.Kind.IsSource():
		return rule.Match == source
	case rule.Kind.IsKeyword():
		return strings.Contains(lowerTitle, strings.ToLower(rule.Match))
	case rule.Kind.IsTheme():
		for _, keyword := range s.themes[rule.Match] {
			if strings.Contains(lowerTitle, strings.ToLower(keyword)) {
				return true
			}
		}
	}
	return false
}

func (s *Scorer) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Scorer) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
