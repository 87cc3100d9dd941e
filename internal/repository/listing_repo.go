package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Producdevity/EmuReady-sub005/internal/model"
)

// DefaultListingLimit caps how many listings a single aggregation loads.
const DefaultListingLimit = 5000

// ListingFilter narrows FindScoringListings. Empty fields are ignored.
type ListingFilter struct {
	GameID     string
	SystemID   string
	EmulatorID string
	Limit      int
}

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

// scoringListingSelect loads approved listings with everything the scoring
// engine needs. Verifications are aggregated to JSON to keep one row per listing.
const scoringListingSelect = `
	SELECT l.id, ps.rank, l.success_rate::float8, l.vote_count, l.upvote_count, l.downvote_count,
	       EXISTS (
	           SELECT 1 FROM verified_developers vd
	           WHERE vd.user_id = l.author_id AND vd.emulator_id = l.emulator_id
	       ) AS is_verified_developer,
	       COALESCE((
	           SELECT json_agg(json_build_object(
	               'id', dv.id, 'verifiedBy', dv.verified_by, 'verifiedAt', dv.verified_at))
	           FROM listing_developer_verifications dv
	           WHERE dv.listing_id = l.id
	       ), '[]'::json) AS verifications,
	       u.id, u.trust_score::float8,
	       l.created_at,
	       e.id, e.name, e.logo,
	       g.id, g.title,
	       s.id, s.name
	FROM listings l
	JOIN performance_scales ps ON ps.id = l.performance_id
	JOIN users u ON u.id = l.author_id
	JOIN emulators e ON e.id = l.emulator_id
	JOIN games g ON g.id = l.game_id
	JOIN systems s ON s.id = g.system_id
	WHERE l.status = 'APPROVED'`

// FindScoringListings returns approved listings matching the filter, newest first.
func (r *ListingRepo) FindScoringListings(ctx context.Context, f ListingFilter) ([]model.ScoringListing, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	add("l.game_id = $%d", f.GameID)
	add("g.system_id = $%d", f.SystemID)
	add("l.emulator_id = $%d", f.EmulatorID)

	limit := f.Limit
	if limit <= 0 || limit > DefaultListingLimit {
		limit = DefaultListingLimit
	}
	args = append(args, limit)

	var sb strings.Builder
	sb.WriteString(scoringListingSelect)
	for _, c := range conds {
		sb.WriteString(" AND ")
		sb.WriteString(c)
	}
	fmt.Fprintf(&sb, " ORDER BY l.created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query scoring listings: %w", err)
	}
	defer rows.Close()

	var listings []model.ScoringListing
	for rows.Next() {
		l, err := scanScoringListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// FindScoringListingByID returns one approved listing. Returns pgx.ErrNoRows when absent.
func (r *ListingRepo) FindScoringListingByID(ctx context.Context, listingID string) (*model.ScoringListing, error) {
	return scanScoringListing(r.pool.QueryRow(ctx, scoringListingSelect+" AND l.id = $1", listingID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScoringListing(row rowScanner) (*model.ScoringListing, error) {
	var (
		l             model.ScoringListing
		author        model.ListingAuthor
		emulator      model.EmulatorRef
		game          model.GameRef
		system        model.SystemRef
		verifications []byte
		createdAt     time.Time
	)
	err := row.Scan(
		&l.ID, &l.PerformanceRank, &l.SuccessRate, &l.VoteCount, &l.UpvoteCount, &l.DownvoteCount,
		&l.IsVerifiedDeveloper, &verifications,
		&author.ID, &author.TrustScore,
		&createdAt,
		&emulator.ID, &emulator.Name, &emulator.Logo,
		&game.ID, &game.Title,
		&system.ID, &system.Name,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(verifications, &l.DeveloperVerifications); err != nil {
		return nil, fmt.Errorf("decode verifications for listing %s: %w", l.ID, err)
	}

	game.System = &system
	l.Author = &author
	l.Emulator = &emulator
	l.Game = &game
	l.CreatedAt = createdAt
	return &l, nil
}
