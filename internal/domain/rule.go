package domain

import (
	"fmt"
	"time"
)

// Score bounds enforced at every pipeline stage.
const (
	MinScore     = 1
	MaxScore     = 10
	NeutralScore = 5
)

// ClampScore forces a score into the closed range [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// RuleKind enumerates the supported adjustment rule categories.
type RuleKind string

const (
	SourceBonus  RuleKind = "source_bonus"
	SourceMalus  RuleKind = "source_malus"
	KeywordBonus RuleKind = "keyword_bonus"
	KeywordMalus RuleKind = "keyword_malus"
	ThemeBonus   RuleKind = "theme_bonus"
	ThemeMalus   RuleKind = "theme_malus"
)

// IsSource reports whether the kind matches on the candidate source name.
func (k RuleKind) IsSource() bool {
	return k == SourceBonus || k == SourceMalus
}

// IsKeyword reports whether the kind matches on a title keyword or phrase.
func (k RuleKind) IsKeyword() bool {
	return k == KeywordBonus || k == KeywordMalus
}

// IsTheme reports whether the kind matches through a theme keyword group.
func (k RuleKind) IsTheme() bool {
	return k == ThemeBonus || k == ThemeMalus
}

// Rule is a single immutable score adjustment mined from user feedback.
type Rule struct {
	Kind       RuleKind `json:"type"`
	Match      string   `json:"match"`
	Adjustment int      `json:"adjustment"`
	Confidence float64  `json:"confidence"`
	SampleSize int      `json:"sample_size"`
	Reasoning  string   `json:"reasoning"`
}

// Ref renders a short reference for audit trails and explanations.
func (r Rule) Ref() string {
	return fmt.Sprintf("%s:%s (%+d)", r.Kind, r.Match, r.Adjustment)
}

// RuleSet is a versioned, wholesale-replaceable rule collection. A
// regeneration produces a new set; sets are never merged.
type RuleSet struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Rules       []Rule    `json:"rules"`
}
