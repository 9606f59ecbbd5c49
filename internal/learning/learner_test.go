package learning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"MediaCurator/internal/domain"
)

type stubFeedback struct {
	records []domain.FeedbackRecord
	err     error
}

func (s stubFeedback) LoadSince(_ context.Context, _ time.Time) ([]domain.FeedbackRecord, error) {
	return s.records, s.err
}

func feedbackFor(source string, relevant, notRelevant int) []domain.FeedbackRecord {
	var records []domain.FeedbackRecord
	for i := 0; i < relevant; i++ {
		records = append(records, domain.FeedbackRecord{
			ArticleTitle:  fmt.Sprintf("Beitrag Nummer %c zur Branche", 'A'+i),
			ArticleSource: source,
			Verdict:       domain.VerdictRelevant,
		})
	}
	for i := 0; i < notRelevant; i++ {
		records = append(records, domain.FeedbackRecord{
			ArticleTitle:  fmt.Sprintf("Meldung Ziffer %c am Rande", 'A'+i),
			ArticleSource: source,
			Verdict:       domain.VerdictNotRelevant,
		})
	}
	return records
}

func findRule(rules []domain.Rule, kind domain.RuleKind, match string) (domain.Rule, bool) {
	for _, r := range rules {
		if r.Kind == kind && r.Match == match {
			return r, true
		}
	}
	return domain.Rule{}, false
}

func TestRegenerateSourceBonus(t *testing.T) {
	t.Parallel()

	learner := New(stubFeedback{records: feedbackFor("kress", 8, 2)}, Config{MinTotalFeedback: 10}, nil)
	set, changed, err := learner.Regenerate(context.Background(), time.Now(), domain.RuleSet{Version: 3})
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}
	if !changed {
		t.Fatal("expected a new rule set")
	}
	if set.Version != 4 {
		t.Fatalf("expected version 4, got %d", set.Version)
	}

	rule, ok := findRule(set.Rules, domain.SourceBonus, "kress")
	if !ok {
		t.Fatalf("expected a source_bonus rule for kress, got %v", set.Rules)
	}
	if rule.Adjustment != 1 {
		t.Fatalf("expected adjustment +1, got %d", rule.Adjustment)
	}
	if rule.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.80, got %v", rule.Confidence)
	}
	if rule.SampleSize != 10 {
		t.Fatalf("expected sample size 10, got %d", rule.SampleSize)
	}
	if rule.Reasoning == "" {
		t.Fatal("rules must carry a human-readable justification")
	}
}

func TestRegenerateStrongRatioDoublesAdjustment(t *testing.T) {
	t.Parallel()

	learner := New(stubFeedback{records: feedbackFor("DWDL", 10, 0)}, Config{MinTotalFeedback: 10}, nil)
	set, _, err := learner.Regenerate(context.Background(), time.Now(), domain.RuleSet{})
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}

	rule, ok := findRule(set.Rules, domain.SourceBonus, "DWDL")
	if !ok {
		t.Fatal("expected a source_bonus rule for DWDL")
	}
	if rule.Adjustment != 2 {
		t.Fatalf("expected adjustment +2 at 100%% positive, got %d", rule.Adjustment)
	}
}

func TestRegenerateSourceMalus(t *testing.T) {
	t.Parallel()

	learner := New(stubFeedback{records: feedbackFor("Deadline", 1, 9)}, Config{MinTotalFeedback: 10}, nil)
	set, _, err := learner.Regenerate(context.Background(), time.Now(), domain.RuleSet{})
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}

	rule, ok := findRule(set.Rules, domain.SourceMalus, "Deadline")
	if !ok {
		t.Fatal("expected a source_malus rule for Deadline")
	}
	if rule.Adjustment != -2 {
		t.Fatalf("expected adjustment -2 at 10%% positive, got %d", rule.Adjustment)
	}
	if rule.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.90, got %v", rule.Confidence)
	}
}

func TestRegenerateSkipsSmallGroups(t *testing.T) {
	t.Parallel()

	// Two feedback items for one source stay below both minimums; pad the
	// total with another source so the global minimum is met.
	records := append(feedbackFor("Tiny Source", 2, 0), feedbackFor("Deadline", 4, 4)...)
	learner := New(stubFeedback{records: records}, Config{MinTotalFeedback: 5}, nil)

	set, _, err := learner.Regenerate(context.Background(), time.Now(), domain.RuleSet{})
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}
	if _, ok := findRule(set.Rules, domain.SourceBonus, "Tiny Source"); ok {
		t.Fatal("groups below the minimum sample size must not emit rules")
	}
}

func TestRegenerateInsufficientFeedbackKeepsPrev(t *testing.T) {
	t.Parallel()

	prev := domain.RuleSet{Version: 7, Rules: []domain.Rule{
		{Kind: domain.SourceBonus, Match: "DWDL", Adjustment: 1},
	}}
	learner := New(stubFeedback{records: feedbackFor("DWDL", 2, 1)}, Config{MinTotalFeedback: 10}, nil)

	set, changed, err := learner.Regenerate(context.Background(), time.Now(), prev)
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}
	if changed {
		t.Fatal("insufficient feedback must be a no-op")
	}
	if set.Version != 7 || len(set.Rules) != 1 {
		t.Fatalf("previous rule set must be kept untouched, got %+v", set)
	}
}

func TestRegenerateStoreErrorIsFatal(t *testing.T) {
	t.Parallel()

	learner := New(stubFeedback{err: errors.New("connection refused")}, Config{}, nil)
	_, changed, err := learner.Regenerate(context.Background(), time.Now(), domain.RuleSet{})
	if err == nil {
		t.Fatal("a failing feedback store must abort the batch")
	}
	if changed {
		t.Fatal("no new rule set on store failure")
	}
}

func TestRegenerateThemeRules(t *testing.T) {
	t.Parallel()

	themes := map[string][]string{"streaming": {"netflix", "streaming"}}
	var records []domain.FeedbackRecord
	for i := 0; i < 4; i++ {
		records = append(records, domain.FeedbackRecord{
			ArticleTitle:  fmt.Sprintf("Netflix kündigt Projekt %d an", i),
			ArticleSource: fmt.Sprintf("Quelle%d", i),
			Verdict:       domain.VerdictRelevant,
		})
	}

	learner := New(stubFeedback{records: records}, Config{MinTotalFeedback: 4, Themes: themes}, nil)
	set, _, err := learner.Regenerate(context.Background(), time.Now(), domain.RuleSet{})
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}

	rule, ok := findRule(set.Rules, domain.ThemeBonus, "streaming")
	if !ok {
		t.Fatalf("expected a theme_bonus rule for streaming, got %v", set.Rules)
	}
	if rule.Adjustment != 2 {
		t.Fatalf("expected +2 at 100%% positive, got %d", rule.Adjustment)
	}
}

func TestRegenerateSortsByConfidence(t *testing.T) {
	t.Parallel()

	records := append(feedbackFor("DWDL", 10, 0), feedbackFor("kress", 8, 2)...)
	learner := New(stubFeedback{records: records}, Config{MinTotalFeedback: 10}, nil)
	set, _, err := learner.Regenerate(context.Background(), time.Now(), domain.RuleSet{})
	if err != nil {
		t.Fatalf("Regenerate error: %v", err)
	}

	for i := 1; i < len(set.Rules); i++ {
		if set.Rules[i].Confidence > set.Rules[i-1].Confidence {
			t.Fatalf("rules not sorted by confidence: %v", set.Rules)
		}
	}
}

func TestTitleTerms(t *testing.T) {
	t.Parallel()

	terms := titleTerms("Netflix plant neue Serie für Deutschland")
	want := map[string]bool{
		"netflix":       true,
		"plant":         true,
		"neue":          true,
		"serie":         true,
		"deutschland":   true,
		"netflix plant": true,
		"plant neue":    true,
	}
	for _, term := range terms {
		delete(want, term)
	}
	for missing := range want {
		t.Fatalf("expected term %q in %v", missing, terms)
	}

	for _, term := range terms {
		if term == "für" {
			t.Fatal("short tokens must be dropped")
		}
	}
}
