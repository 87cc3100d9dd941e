package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Producdevity/EmuReady-sub005/internal/model"
)

// contentSource maps an entity type to the table and columns holding its author and text.
type contentSource struct {
	table      string
	authorCol  string
	textCol    string
	createdCol string
	liveFilter string
}

var contentSources = map[model.EntityType]contentSource{
	model.EntityListing: {
		table:      "listings",
		authorCol:  "author_id",
		textCol:    "notes",
		createdCol: "created_at",
		liveFilter: "TRUE",
	},
	model.EntityComment: {
		table:      "comments",
		authorCol:  "user_id",
		textCol:    "content",
		createdCol: "created_at",
		liveFilter: "deleted_at IS NULL",
	},
}

// ContentRepo reads an author's recently submitted listings and comments.
type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

func sourceFor(entityType model.EntityType) (contentSource, error) {
	src, ok := contentSources[entityType]
	if !ok {
		return contentSource{}, fmt.Errorf("unknown entity type %q", entityType)
	}
	return src, nil
}

// CountRecentByAuthor counts records of entityType the author created at or after since.
func (r *ContentRepo) CountRecentByAuthor(ctx context.Context, entityType model.EntityType, authorID string, since time.Time) (int, error) {
	src, err := sourceFor(entityType)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE %s = $1 AND %s >= $2 AND %s`,
		src.table, src.authorCol, src.createdCol, src.liveFilter)

	var count int
	if err := r.pool.QueryRow(ctx, query, authorID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent %s: %w", src.table, err)
	}
	return count, nil
}

// FindRecentContentByAuthor returns up to limit texts of entityType the author
// created at or after since. Empty texts are skipped.
func (r *ContentRepo) FindRecentContentByAuthor(ctx context.Context, entityType model.EntityType, authorID string, since time.Time, limit int, mostRecentFirst bool) ([]model.ContentRecord, error) {
	src, err := sourceFor(entityType)
	if err != nil {
		return nil, err
	}

	order := "ASC"
	if mostRecentFirst {
		order = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s >= $2 AND %s
		  AND %s IS NOT NULL AND %s <> ''
		ORDER BY %s %s
		LIMIT $3`,
		src.textCol, src.table, src.authorCol, src.createdCol, src.liveFilter,
		src.textCol, src.textCol, src.createdCol, order)

	rows, err := r.pool.Query(ctx, query, authorID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("recent %s: %w", src.table, err)
	}
	defer rows.Close()

	var records []model.ContentRecord
	for rows.Next() {
		var rec model.ContentRecord
		if err := rows.Scan(&rec.Text); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
