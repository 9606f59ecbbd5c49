package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// ArchiveRepository persists delivered newsletter items into Postgres.
type ArchiveRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.Archive = (*ArchiveRepository)(nil)

// NewArchiveRepository wires a sql.DB implementation.
func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindByURL returns every archived record stored under the given URL.
func (r *ArchiveRepository) FindByURL(ctx context.Context, url string) ([]domain.ArchiveRecord, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.builder.
		Select("url", "title", "source", "region", "published_date", "first_sent_date", "relevance_score", "summary").
		From("archive_records").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var records []domain.ArchiveRecord
	for rows.Next() {
		var rec domain.ArchiveRecord
		var published, firstSent sql.NullTime
		var region, summary sql.NullString
		if err := rows.Scan(&rec.URL, &rec.Title, &rec.Source, &region, &published, &firstSent, &rec.RelevanceScore, &summary); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Region = region.String
		rec.Summary = summary.String
		if published.Valid {
			rec.PublishedDate = published.Time
		}
		if firstSent.Valid {
			rec.FirstSentDate = firstSent.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}

// Insert appends a delivered item to the archive.
func (r *ArchiveRepository) Insert(ctx context.Context, rec domain.ArchiveRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("archive_records").
		Columns("url", "title", "source", "region", "published_date", "first_sent_date", "relevance_score", "summary").
		Values(rec.URL, rec.Title, rec.Source, rec.Region, rec.PublishedDate, rec.FirstSentDate, rec.RelevanceScore, rec.Summary).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert archive record: %w", err)
	}

	return nil
}
