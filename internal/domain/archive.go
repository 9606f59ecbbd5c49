package domain

import "time"

// ArchiveRecord is a previously delivered item. Records are append-only and
// queried by URL to suppress duplicates in later runs.
type ArchiveRecord struct {
	URL            string
	Title          string
	Source         string
	Region         string
	PublishedDate  time.Time
	FirstSentDate  time.Time
	RelevanceScore int
	Summary        string
}

// FeedbackVerdict is an end-user reaction to a delivered item.
type FeedbackVerdict string

const (
	VerdictRelevant    FeedbackVerdict = "relevant"
	VerdictNotRelevant FeedbackVerdict = "not_relevant"
)

// FeedbackRecord is one user reaction captured from a newsletter. The
// collection is append-only and consumed only by rule regeneration.
type FeedbackRecord struct {
	ArticleTitle   string
	ArticleSource  string
	Verdict        FeedbackVerdict
	NewsletterDate time.Time
}

// SearchResult is one hit returned by the web-search collaborator.
type SearchResult struct {
	Title   string
	Snippet string
	URL     string
}
