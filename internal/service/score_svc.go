package service

import (
	"math"
	"sort"
	"time"

	"github.com/Producdevity/EmuReady-sub005/internal/metrics"
	"github.com/Producdevity/EmuReady-sub005/internal/model"
)

// performanceQuality maps a performance rank (1 = best) to a 0–100 quality score.
var performanceQuality = map[int]float64{
	1: 100,
	2: 85,
	3: 70,
	4: 40,
	5: 30,
	6: 15,
	7: 5,
	8: 0,
}

const (
	maxScore = 100.0

	verifiedAuthorBoost      = 10.0
	perVerificationBoost     = 5.0
	maxExplicitVerifyBoost   = 10.0
	maxVerificationBoost     = 20.0
	trustBoostPerPoint       = 0.1
	maxTrustBoost            = 5.0
	recencyDecayBase         = 0.9
	recencyHalfPeriodDays    = 180.0
	voteWeightBaselineOffset = 10.0
	hoursPerDay              = 24.0
)

// ScoreWeights tunes how listing and aggregate scores are blended.
type ScoreWeights struct {
	// Performance multiplies the rank quality when a listing has votes.
	Performance float64
	// VoteConfidence multiplies successRate×100 when a listing has votes.
	VoteConfidence float64
	// VoteCount multiplies the diminishing-returns vote weight in aggregation.
	VoteCount float64
	// Recency multiplies the age decay in aggregation. 0 disables it.
	Recency float64
}

// ConfidenceThreshold is the minimum listing count and vote count for a tier.
type ConfidenceThreshold struct {
	Listings int
	Votes    int
}

// ScoringConfig holds the tunables of the compatibility scoring engine.
type ScoringConfig struct {
	Weights ScoreWeights
	Medium  ConfidenceThreshold
	High    ConfidenceThreshold
	// Now is the clock used for recency decay. Defaults to time.Now.
	Now func() time.Time
}

// DefaultScoringConfig returns the documented defaults:
// performance 0.5, vote confidence 0.3, vote count 1.0, recency disabled,
// medium at 3 listings & 5 votes, high at 10 listings & 20 votes.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: ScoreWeights{
			Performance:    0.5,
			VoteConfidence: 0.3,
			VoteCount:      1.0,
			Recency:        0.0,
		},
		Medium: ConfidenceThreshold{Listings: 3, Votes: 5},
		High:   ConfidenceThreshold{Listings: 10, Votes: 20},
		Now:    time.Now,
	}
}

// ScoreService turns compatibility reports into 0–100 scores and aggregates them.
// It performs no I/O and never fails: bad input degrades to a neutral value.
type ScoreService struct {
	cfg ScoringConfig
}

func NewScoreService(cfg ScoringConfig) *ScoreService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ScoreService{cfg: cfg}
}

// PerformanceQuality returns the quality score for a rank; unknown ranks map to 0.
func PerformanceQuality(rank int) float64 {
	return performanceQuality[rank]
}

// VerificationBoost returns the 0–20 bonus for developer endorsement:
// +10 when the author is a verified developer plus 5 per explicit verification
// (at most 10), with the sum capped at 20.
func VerificationBoost(l *model.ScoringListing) float64 {
	boost := 0.0
	if l.IsVerifiedDeveloper {
		boost += verifiedAuthorBoost
	}
	boost += math.Min(perVerificationBoost*float64(len(l.DeveloperVerifications)), maxExplicitVerifyBoost)
	return math.Min(boost, maxVerificationBoost)
}

// TrustBoost returns the additive 0–5 bonus for a positive trust score.
// It is never negative; distrusted authors are excluded in CalculateListingScore instead.
func TrustBoost(trustScore float64) float64 {
	if trustScore <= 0 {
		return 0
	}
	return math.Min(maxTrustBoost, trustScore*trustBoostPerPoint)
}

// CalculateListingScore computes the integer 0–100 score of a single listing.
//
//	trust < 0            → 0
//	no votes             → min(100, quality + verification + trustBoost)
//	has votes            → min(100, quality×w.performance + successRate×100×w.voteConfidence + verification)
//
// The two branches are intentionally different formulas.
func (s *ScoreService) CalculateListingScore(l *model.ScoringListing) int {
	if l == nil {
		return 0
	}

	trust := l.AuthorTrust()
	if trust < 0 {
		return 0
	}

	performanceScore := PerformanceQuality(l.PerformanceRank)
	verificationBoost := VerificationBoost(l)

	var score float64
	if l.VoteCount == 0 {
		score = math.Min(maxScore, performanceScore+verificationBoost+TrustBoost(trust))
	} else {
		voteConfidence := clamp01(l.SuccessRate) * 100
		score = math.Min(maxScore,
			performanceScore*s.cfg.Weights.Performance+
				voteConfidence*s.cfg.Weights.VoteConfidence+
				verificationBoost)
	}

	return roundScore(score)
}

// CalculateVoteWeight returns log10(votes + 10): 1.0 at zero votes, growing sub-linearly.
func CalculateVoteWeight(voteCount int) float64 {
	if voteCount < 0 {
		voteCount = 0
	}
	return math.Log10(float64(voteCount) + voteWeightBaselineOffset)
}

// CalculateRecencyWeight returns 0.9^(ageDays/180): 1.0 for a new record,
// ~0.9 after 180 days. Timestamps in the future count as brand new.
func CalculateRecencyWeight(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / hoursPerDay
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Pow(recencyDecayBase, ageDays/recencyHalfPeriodDays)
}

// AggregateSystemScore returns the vote-weighted mean of the listing scores.
// Empty input returns 0.
func (s *ScoreService) AggregateSystemScore(listings []model.ScoringListing) int {
	if len(listings) == 0 {
		return 0
	}

	now := s.cfg.Now()
	var weightedSum, totalWeight float64
	for i := range listings {
		l := &listings[i]
		w := CalculateVoteWeight(l.VoteCount)*s.cfg.Weights.VoteCount +
			CalculateRecencyWeight(l.CreatedAt, now)*s.cfg.Weights.Recency
		weightedSum += float64(s.CalculateListingScore(l)) * w
		totalWeight += w
	}

	if totalWeight <= 0 {
		return 0
	}
	return roundScore(weightedSum / totalWeight)
}

// CalculateConfidenceLevel classifies how well-supported an aggregate is.
// A tier is reached only when both its listing and vote thresholds are met.
func (s *ScoreService) CalculateConfidenceLevel(listingCount, totalVotes int) model.ConfidenceLevel {
	if listingCount >= s.cfg.High.Listings && totalVotes >= s.cfg.High.Votes {
		return model.ConfidenceHigh
	}
	if listingCount >= s.cfg.Medium.Listings && totalVotes >= s.cfg.Medium.Votes {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

// AggregateByEmulator groups listings by emulator and scores each group,
// highest score first. Listings without an emulator are skipped.
func (s *ScoreService) AggregateByEmulator(listings []model.ScoringListing) []model.EmulatorScore {
	defer metrics.ObserveSince(metrics.AggregationDuration.WithLabelValues("emulator"), time.Now())

	order, groups := partition(listings, (*model.ScoringListing).EmulatorID)

	results := make([]model.EmulatorScore, 0, len(order))
	for _, id := range order {
		group := groups[id]
		first := group[0].Emulator

		var verified, developer int
		for i := range group {
			if len(group[i].DeveloperVerifications) > 0 {
				verified++
			}
			if group[i].IsVerifiedDeveloper {
				developer++
			}
		}
		totalVotes := sumVotes(group)

		results = append(results, model.EmulatorScore{
			EmulatorID:             id,
			EmulatorName:           first.Name,
			EmulatorLogo:           first.Logo,
			Score:                  s.AggregateSystemScore(group),
			ListingCount:           len(group),
			TotalVotes:             totalVotes,
			AveragePerformanceRank: averageRank(group),
			AverageSuccessRate:     averageVotedSuccessRate(group),
			VerifiedListingCount:   verified,
			DeveloperListingCount:  developer,
			Confidence:             s.CalculateConfidenceLevel(len(group), totalVotes),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// AggregateBySystem groups listings by the system of their game and scores each
// group with a nested per-emulator breakdown, highest score first.
func (s *ScoreService) AggregateBySystem(listings []model.ScoringListing) []model.SystemScore {
	defer metrics.ObserveSince(metrics.AggregationDuration.WithLabelValues("system"), time.Now())

	order, groups := partition(listings, (*model.ScoringListing).SystemID)

	results := make([]model.SystemScore, 0, len(order))
	for _, id := range order {
		group := groups[id]

		games := make(map[string]struct{})
		var lastUpdated time.Time
		for i := range group {
			games[group[i].Game.ID] = struct{}{}
			if group[i].CreatedAt.After(lastUpdated) {
				lastUpdated = group[i].CreatedAt
			}
		}
		totalVotes := sumVotes(group)

		results = append(results, model.SystemScore{
			SystemID:               id,
			SystemName:             group[0].Game.System.Name,
			Score:                  s.AggregateSystemScore(group),
			ListingCount:           len(group),
			GameCount:              len(games),
			TotalVotes:             totalVotes,
			AveragePerformanceRank: averageRank(group),
			AverageSuccessRate:     averageVotedSuccessRate(group),
			LastUpdated:            lastUpdated,
			Emulators:              s.AggregateByEmulator(group),
			Confidence:             s.CalculateConfidenceLevel(len(group), totalVotes),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// partition groups listings by key, keeping first-appearance order. Empty keys are dropped.
func partition(listings []model.ScoringListing, key func(*model.ScoringListing) string) ([]string, map[string][]model.ScoringListing) {
	var order []string
	groups := make(map[string][]model.ScoringListing)
	for i := range listings {
		k := key(&listings[i])
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], listings[i])
	}
	return order, groups
}

func averageRank(group []model.ScoringListing) float64 {
	if len(group) == 0 {
		return 0
	}
	var sum int
	for i := range group {
		sum += group[i].PerformanceRank
	}
	return float64(sum) / float64(len(group))
}

// averageVotedSuccessRate averages successRate over listings with at least one vote.
// Returns nil when no listing qualifies.
func averageVotedSuccessRate(group []model.ScoringListing) *float64 {
	var sum float64
	var n int
	for i := range group {
		if group[i].VoteCount > 0 {
			sum += group[i].SuccessRate
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func sumVotes(group []model.ScoringListing) int {
	var total int
	for i := range group {
		total += group[i].VoteCount
	}
	return total
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}

// roundScore rounds half up and clamps into [0, 100].
func roundScore(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int(math.Min(math.Floor(v+0.5), maxScore))
}
