package s0_data

import (
	"context"
	"fmt"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/database"
)

// NewsRepository reads and writes the three per-source news tables.
type NewsRepository struct {
	db database.DBTX
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db database.DBTX) *NewsRepository {
	return &NewsRepository{db: db}
}

func newsTable(source contracts.Source) (string, error) {
	table := source.Table()
	if table == "" {
		return "", fmt.Errorf("%w: no table for source %q", contracts.ErrInvalidInput, source)
	}
	return table, nil
}

// EnsureNewsTable creates the source table if it is missing.
func (r *NewsRepository) EnsureNewsTable(ctx context.Context, source contracts.Source) error {
	table, err := newsTable(source)
	if err != nil {
		return err
	}

	query := `
		CREATE TABLE IF NOT EXISTS ` + quote(table) + ` (
			title TEXT,
			link TEXT,
			date TIMESTAMP,
			source TEXT,
			text TEXT,
			sentiment TEXT,
			sentiment_score NUMERIC
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// InsertNews appends one record. There is no deduplication.
func (r *NewsRepository) InsertNews(ctx context.Context, source contracts.Source, rec contracts.NewsRecord) error {
	table, err := newsTable(source)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + quote(table) + ` (title, link, date, source, text, sentiment, sentiment_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		rec.Title,
		rec.Link,
		rec.PublishedAt.UTC(),
		rec.SourceLabel,
		rec.BodyText,
		string(rec.SentimentLabel),
		rec.SentimentScore,
	)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// ListScores returns every dated score of the source, oldest first.
func (r *NewsRepository) ListScores(ctx context.Context, source contracts.Source) ([]contracts.DatedScore, error) {
	table, err := newsTable(source)
	if err != nil {
		return nil, err
	}

	exists, err := tableExists(ctx, r.db, table)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", table, err)
	}
	if !exists {
		return nil, nil
	}

	query := `
		SELECT date, sentiment_score::float8
		FROM ` + quote(table) + `
		WHERE date IS NOT NULL AND sentiment_score IS NOT NULL
		ORDER BY date ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var scores []contracts.DatedScore
	for rows.Next() {
		var s contracts.DatedScore
		if err := rows.Scan(&s.PublishedAt, &s.Score); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
