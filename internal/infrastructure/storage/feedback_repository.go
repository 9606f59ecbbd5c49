package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// FeedbackRepository reads accumulated reader feedback from Postgres.
type FeedbackRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.FeedbackStore = (*FeedbackRepository)(nil)

// NewFeedbackRepository wires a sql.DB implementation.
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// LoadSince returns all feedback recorded on or after the cutoff date.
func (r *FeedbackRepository) LoadSince(ctx context.Context, cutoff time.Time) ([]domain.FeedbackRecord, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.builder.
		Select("article_title", "article_source", "verdict", "newsletter_date").
		From("article_feedback").
		Where(sq.GtOrEq{"newsletter_date": cutoff}).
		OrderBy("newsletter_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var records []domain.FeedbackRecord
	for rows.Next() {
		var rec domain.FeedbackRecord
		var verdict string
		var date sql.NullTime
		if err := rows.Scan(&rec.ArticleTitle, &rec.ArticleSource, &verdict, &date); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		rec.Verdict = domain.FeedbackVerdict(verdict)
		if date.Valid {
			rec.NewsletterDate = date.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
