package scoring

import (
	"context"
	"errors"
	"testing"

	"MediaCurator/internal/domain"
)

type stubClassifier struct {
	score int
	err   error
}

func (s stubClassifier) Score(_ context.Context, _, _ string) (int, error) {
	return s.score, s.err
}

func themes() map[string][]string {
	return map[string][]string{
		"streaming": {"netflix", "streaming"},
	}
}

func TestScoreKeywordBonus(t *testing.T) {
	t.Parallel()

	scorer := New(stubClassifier{score: 5}, themes(), nil)
	set := domain.RuleSet{Rules: []domain.Rule{
		{Kind: domain.KeywordBonus, Match: "netflix", Adjustment: 1},
		{Kind: domain.SourceBonus, Match: "DWDL", Adjustment: 1},
	}}

	c := domain.Candidate{Source: "Variety", Title: "Netflix orders new German drama"}
	scorer.Score(context.Background(), &c, set)

	if c.BaseScore != 5 {
		t.Fatalf("expected base score 5, got %d", c.BaseScore)
	}
	if c.AdjustedScore != 6 {
		t.Fatalf("expected adjusted score 6, got %d", c.AdjustedScore)
	}
	if len(c.AppliedRules) != 1 {
		t.Fatalf("expected exactly one applied rule, got %v", c.AppliedRules)
	}
	if c.AppliedRules[0] != "keyword_bonus:netflix (+1)" {
		t.Fatalf("unexpected rule reference: %s", c.AppliedRules[0])
	}
}

func TestScoreMalusClampsAtFloor(t *testing.T) {
	t.Parallel()

	scorer := New(stubClassifier{score: 2}, nil, nil)
	set := domain.RuleSet{Rules: []domain.Rule{
		{Kind: domain.SourceMalus, Match: "Deadline", Adjustment: -5},
	}}

	c := domain.Candidate{Source: "Deadline", Title: "Some headline"}
	scorer.Score(context.Background(), &c, set)

	if c.AdjustedScore != 1 {
		t.Fatalf("expected score clamped to 1, got %d", c.AdjustedScore)
	}
}

func TestScoreClampsAfterEveryAdjustment(t *testing.T) {
	t.Parallel()

	// A banked malus would yield 2-5+4=1; per-step clamping yields 1+4=5.
	scorer := New(stubClassifier{score: 2}, nil, nil)
	set := domain.RuleSet{Rules: []domain.Rule{
		{Kind: domain.SourceMalus, Match: "Deadline", Adjustment: -5},
		{Kind: domain.KeywordBonus, Match: "show", Adjustment: 4},
	}}

	c := domain.Candidate{Source: "Deadline", Title: "New show announced"}
	scorer.Score(context.Background(), &c, set)

	if c.AdjustedScore != 5 {
		t.Fatalf("expected per-step clamped score 5, got %d", c.AdjustedScore)
	}
	if len(c.AppliedRules) != 2 {
		t.Fatalf("expected both rules applied, got %v", c.AppliedRules)
	}
}

func TestScoreStaysInRange(t *testing.T) {
	t.Parallel()

	rulesets := []domain.RuleSet{
		{Rules: []domain.Rule{{Kind: domain.KeywordBonus, Match: "tv", Adjustment: 9}}},
		{Rules: []domain.Rule{{Kind: domain.KeywordMalus, Match: "tv", Adjustment: -9}}},
		{Rules: []domain.Rule{
			{Kind: domain.KeywordBonus, Match: "tv", Adjustment: 7},
			{Kind: domain.KeywordBonus, Match: "tv", Adjustment: 7},
			{Kind: domain.KeywordMalus, Match: "tv", Adjustment: -20},
		}},
	}

	for base := 1; base <= 10; base++ {
		for _, set := range rulesets {
			scorer := New(stubClassifier{score: base}, nil, nil)
			c := domain.Candidate{Source: "DWDL", Title: "tv news"}
			scorer.Score(context.Background(), &c, set)
			if c.AdjustedScore < 1 || c.AdjustedScore > 10 {
				t.Fatalf("score %d escaped [1,10] for base %d", c.AdjustedScore, base)
			}
		}
	}
}

func TestScoreThemeRule(t *testing.T) {
	t.Parallel()

	scorer := New(stubClassifier{score: 5}, themes(), nil)
	set := domain.RuleSet{Rules: []domain.Rule{
		{Kind: domain.ThemeBonus, Match: "streaming", Adjustment: 2},
	}}

	c := domain.Candidate{Source: "Variety", Title: "Streaming wars heat up in Europe"}
	scorer.Score(context.Background(), &c, set)

	if c.AdjustedScore != 7 {
		t.Fatalf("expected theme bonus to raise score to 7, got %d", c.AdjustedScore)
	}
}

func TestScoreClassifierFailureDefaultsNeutral(t *testing.T) {
	t.Parallel()

	scorer := New(stubClassifier{err: errors.New("boom")}, nil, nil)
	c := domain.Candidate{Source: "DWDL", Title: "Headline"}
	scorer.Score(context.Background(), &c, domain.RuleSet{})

	if c.BaseScore != domain.NeutralScore {
		t.Fatalf("expected neutral base score, got %d", c.BaseScore)
	}
	if c.AdjustedScore != domain.NeutralScore {
		t.Fatalf("expected neutral adjusted score, got %d", c.AdjustedScore)
	}
}

func TestScoreKeywordMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	scorer := New(stubClassifier{score: 5}, nil, nil)
	set := domain.RuleSet{Rules: []domain.Rule{
		{Kind: domain.KeywordBonus, Match: "NETFLIX", Adjustment: 1},
	}}

	c := domain.Candidate{Source: "Variety", Title: "netflix expands again"}
	scorer.Score(context.Background(), &c, set)

	if c.AdjustedScore != 6 {
		t.Fatalf("expected case-insensitive keyword match, got %d", c.AdjustedScore)
	}
}
