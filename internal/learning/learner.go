package learning

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

const minTermLen = 4

// Config tunes feedback mining and rule emission.
type Config struct {
	Window            time.Duration
	MinKeywordSamples int
	MinSourceSamples  int
	MinTotalFeedback  int
	HighThreshold     float64
	LowThreshold      float64
	StrongHigh        float64
	StrongLow         float64
	Themes            map[string][]string
}

// Learner mines accumulated feedback and produces a replacement rule set.
// It runs on its own cadence, independent of the daily pipeline.
type Learner struct {
	store  ports.FeedbackStore
	cfg    Config
	logger *slog.Logger
}

// New wires the feedback store into the learner.
func New(store ports.FeedbackStore, cfg Config, logger *slog.Logger) *Learner {
	if cfg.Window <= 0 {
		cfg.Window = 30 * 24 * time.Hour
	}
	if cfg.MinKeywordSamples <= 0 {
		cfg.MinKeywordSamples = 3
	}
	if cfg.MinSourceSamples <= 0 {
		cfg.MinSourceSamples = 6
	}
	if cfg.HighThreshold <= 0 {
		cfg.HighThreshold = 0.75
	}
	if cfg.LowThreshold <= 0 {
		cfg.LowThreshold = 0.25
	}
	if cfg.StrongHigh <= 0 {
		cfg.StrongHigh = 0.90
	}
	if cfg.StrongLow <= 0 {
		cfg.StrongLow = 0.10
	}
	return &Learner{store: store, cfg: cfg, logger: logger}
}

type groupStat struct {
	relevant int
	total    int
}

// Regenerate mines the trailing feedback window and returns a fresh rule
// set that wholly replaces prev. When the window holds too little feedback
// the previous set is returned unchanged and the second result is false.
// A failing feedback store is fatal for this batch run only.
func (l *Learner) Regenerate(ctx context.Context, now time.Time, prev domain.RuleSet) (domain.RuleSet, bool, error) {
	cutoff := now.Add(-l.cfg.Window)
	records, err := l.store.LoadSince(ctx, cutoff)
	if err != nil {
		return prev, false, fmt.Errorf("load feedback: %w", err)
	}

	if len(records) < l.cfg.MinTotalFeedback {
		l.info("not enough feedback, keeping current rule set",
			"records", len(records), "required", l.cfg.MinTotalFeedback)
		return prev, false, nil
	}

	sources := map[string]*groupStat{}
	keywords := map[string]*groupStat{}
	themes := map[string]*groupStat{}

	for _, rec := range records {
		positive := rec.Verdict == domain.VerdictRelevant
		bump(sources, rec.ArticleSource, positive)
		for _, term := range titleTerms(rec.ArticleTitle) {
			bump(keywords, term, positive)
		}
		for _, theme := range titleThemes(rec.ArticleTitle, l.cfg.Themes) {
			bump(themes, theme, positive)
		}
	}

	var rules []domain.Rule
	rules = append(rules, l.emit(themes, "theme", domain.ThemeBonus, domain.ThemeMalus, l.cfg.MinKeywordSamples)...)
	rules = append(rules, l.emit(keywords, "keyword", domain.KeywordBonus, domain.KeywordMalus, l.cfg.MinKeywordSamples)...)
	rules = append(rules, l.emit(sources, "source", domain.SourceBonus, domain.SourceMalus, l.cfg.MinSourceSamples)...)

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Confidence != rules[j].Confidence {
			return rules[i].Confidence > rules[j].Confidence
		}
		if rules[i].Kind != rules[j].Kind {
			return rules[i].Kind < rules[j].Kind
		}
		return rules[i].Match < rules[j].Match
	})

	set := domain.RuleSet{
		Version:     prev.Version + 1,
		GeneratedAt: now,
		Rules:       rules,
	}

	l.info("rule set regenerated",
		"version", set.Version, "rules", len(rules), "feedback", len(records))
	return set, true, nil
}

func (l *Learner) emit(stats map[string]*groupStat, label string, bonus, malus domain.RuleKind, minSamples int) []domain.Rule {
	var rules []domain.Rule
	for match, st := range stats {
		if st.total < minSamples {
			continue
		}

		ratio := float64(st.relevant) / float64(st.total)
		switch {
		case ratio >= l.cfg.HighThreshold:
			adjustment := 1
			if ratio >= l.cfg.StrongHigh {
				adjustment = 2
			}
			rules = append(rules, domain.Rule{
				Kind:       bonus,
				Match:      match,
				Adjustment: adjustment,
				Confidence: ratio,
				SampleSize: st.total,
				Reasoning: fmt.Sprintf("%s %q has %.1f%% positive feedback (%d/%d)",
					label, match, ratio*100, st.relevant, st.total),
			})
		case ratio <= l.cfg.LowThreshold:
			adjustment := -1
			if ratio <= l.cfg.StrongLow {
				adjustment = -2
			}
			rules = append(rules, domain.Rule{
				Kind:       malus,
				Match:      match,
				Adjustment: adjustment,
				Confidence: 1 - ratio,
				SampleSize: st.total,
				Reasoning: fmt.Sprintf("%s %q has only %.1f%% positive feedback (%d/%d)",
					label, match, ratio*100, st.relevant, st.total),
			})
		}
	}
	return rules
}

func bump(stats map[string]*groupStat, key string, positive bool) {
	if key == "" {
		return
	}
	st, ok := stats[key]
	if !ok {
		st = &groupStat{}
		stats[key] = st
	}
	st.total++
	if positive {
		st.relevant++
	}
}

// titleTerms tokenizes a title into significant single words plus two-word
// phrases of consecutive significant words.
func titleTerms(title string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var kept []string
	for _, token := range tokens {
		if utf8.RuneCountInString(token) < minTermLen {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		kept = append(kept, token)
	}

	seen := make(map[string]struct{}, len(kept)*2)
	var terms []string
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for i, token := range kept {
		add(token)
		if i+1 < len(kept) {
			add(token + " " + kept[i+1])
		}
	}
	return terms
}

func titleThemes(title string, taxonomy map[string][]string) []string {
	lower := strings.ToLower(title)
	var matched []string
	for theme, words := range taxonomy {
		for _, word := range words {
			if strings.Contains(lower, strings.ToLower(word)) {
				matched = append(matched, theme)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

var stopWords = map[string]struct{}{
	// German
	"aber": {}, "auch": {}, "beim": {}, "dann": {}, "dass": {}, "dem": {},
	"diese": {}, "dieser": {}, "eine": {}, "einem": {}, "einen": {}, "einer": {},
	"für": {}, "gegen": {}, "hat": {}, "ihre": {}, "mehr": {}, "nach": {},
	"nicht": {}, "noch": {}, "sich": {}, "sind": {}, "soll": {}, "über": {},
	"wegen": {}, "werden": {}, "wieder": {}, "wird": {}, "zwischen": {},
	// English
	"about": {}, "after": {}, "against": {}, "amid": {}, "been": {}, "before": {},
	"could": {}, "from": {}, "have": {}, "into": {}, "more": {}, "over": {},
	"says": {}, "that": {}, "their": {}, "they": {}, "this": {}, "what": {},
	"will": {}, "with": {}, "would": {}, "your": {},
}

func (l *Learner) info(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}
