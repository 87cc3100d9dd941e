package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Producdevity/EmuReady-sub005/internal/model"
	"github.com/Producdevity/EmuReady-sub005/internal/repository"
)

// ListingSource loads the listings that feed the scoring engine.
type ListingSource interface {
	FindScoringListings(ctx context.Context, f repository.ListingFilter) ([]model.ScoringListing, error)
	FindScoringListingByID(ctx context.Context, listingID string) (*model.ScoringListing, error)
}

// CompatibilityService loads listings, scores them and caches the aggregates.
type CompatibilityService struct {
	listings ListingSource
	scorer   *ScoreService
	cache    *CacheService
	now      func() time.Time
}

func NewCompatibilityService(listings ListingSource, scorer *ScoreService, cache *CacheService) *CompatibilityService {
	return &CompatibilityService{
		listings: listings,
		scorer:   scorer,
		cache:    cache,
		now:      time.Now,
	}
}

// EmulatorScores returns per-emulator aggregates, optionally scoped to a game and/or system.
func (s *CompatibilityService) EmulatorScores(ctx context.Context, gameID, systemID string) ([]model.EmulatorScore, error) {
	key := ScoreCacheKey("emulators", gameID, systemID)
	return GetOrCompute(ctx, s.cache, key, func(ctx context.Context) ([]model.EmulatorScore, error) {
		listings, err := s.listings.FindScoringListings(ctx, repository.ListingFilter{GameID: gameID, SystemID: systemID})
		if err != nil {
			return nil, err
		}
		return s.scorer.AggregateByEmulator(listings), nil
	})
}

// SystemScores returns per-system aggregates with their emulator breakdowns,
// optionally scoped to one system.
func (s *CompatibilityService) SystemScores(ctx context.Context, systemID string) ([]model.SystemScore, error) {
	key := ScoreCacheKey("systems", systemID)
	return GetOrCompute(ctx, s.cache, key, func(ctx context.Context) ([]model.SystemScore, error) {
		listings, err := s.listings.FindScoringListings(ctx, repository.ListingFilter{SystemID: systemID})
		if err != nil {
			return nil, err
		}
		return s.scorer.AggregateBySystem(listings), nil
	})
}

// Overview loads emulator and system aggregates for one scope concurrently.
func (s *CompatibilityService) Overview(ctx context.Context, systemID string) (*model.ScoreOverviewResponse, error) {
	var resp model.ScoreOverviewResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emulators, err := s.EmulatorScores(gctx, "", systemID)
		resp.Emulators = emulators
		return err
	})
	g.Go(func() error {
		systems, err := s.SystemScores(gctx, systemID)
		resp.Systems = systems
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.GeneratedAt = s.now().UTC().Format(time.RFC3339)
	return &resp, nil
}

// ListingScore scores a single approved listing. Returns pgx.ErrNoRows when it does not exist.
func (s *CompatibilityService) ListingScore(ctx context.Context, listingID string) (*model.ListingScoreResponse, error) {
	listing, err := s.listings.FindScoringListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return &model.ListingScoreResponse{
		ListingID: listing.ID,
		Score:     s.scorer.CalculateListingScore(listing),
	}, nil
}
