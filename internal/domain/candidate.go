package domain

import "time"

// Provenance identifies which resolution stage produced a candidate's content.
type Provenance string

const (
	ProvenanceFeed          Provenance = "feed"
	ProvenanceFulltext      Provenance = "fulltext"
	ProvenanceSearchContext Provenance = "search-context"
	ProvenanceTitleOnly     Provenance = "title-only"
)

// Candidate is a prospective newsletter item moving through the pipeline.
// It is created on feed ingestion and enriched in place stage by stage.
type Candidate struct {
	Source         string
	Title          string
	RawDescription string
	Link           string
	PublishedAt    time.Time

	BaseScore         int
	AdjustedScore     int
	AppliedRules      []string
	ResolvedContent   string
	ContentProvenance Provenance
	Summary           string
}
