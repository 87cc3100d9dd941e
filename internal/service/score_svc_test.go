package service

import (
	"math"
	"testing"
	"time"

	"github.com/Producdevity/EmuReady-sub005/internal/model"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func newTestScoreService() *ScoreService {
	return NewScoreService(DefaultScoringConfig())
}

func verifications(n int) []model.DeveloperVerification {
	out := make([]model.DeveloperVerification, n)
	for i := range out {
		out[i] = model.DeveloperVerification{ID: "v" + string(rune('a'+i))}
	}
	return out
}

func TestPerformanceQuality(t *testing.T) {
	want := map[int]float64{1: 100, 2: 85, 3: 70, 4: 40, 5: 30, 6: 15, 7: 5, 8: 0}
	for rank, quality := range want {
		if got := PerformanceQuality(rank); got != quality {
			t.Errorf("PerformanceQuality(%d) = %.0f, want %.0f", rank, got, quality)
		}
	}

	for _, rank := range []int{0, -1, 9, 100} {
		if got := PerformanceQuality(rank); got != 0 {
			t.Errorf("PerformanceQuality(%d) = %.0f, want 0 for unknown rank", rank, got)
		}
	}
}

func TestVerificationBoost(t *testing.T) {
	tests := []struct {
		name          string
		verifiedDev   bool
		verifications int
		want          float64
	}{
		{"nothing", false, 0, 0},
		{"verified author only", true, 0, 10},
		{"one verification", false, 1, 5},
		{"two verifications", false, 2, 10},
		{"explicit verifications capped at 10", false, 5, 10},
		{"author plus one", true, 1, 15},
		{"author plus many (total cap 20)", true, 4, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &model.ScoringListing{
				IsVerifiedDeveloper:    tt.verifiedDev,
				DeveloperVerifications: verifications(tt.verifications),
			}
			if got := VerificationBoost(l); got != tt.want {
				t.Errorf("VerificationBoost() = %.1f, want %.1f", got, tt.want)
			}
		})
	}
}

func TestVerificationBoost_MonotonicAndBounded(t *testing.T) {
	for _, dev := range []bool{false, true} {
		prev := -1.0
		for n := 0; n <= 10; n++ {
			got := VerificationBoost(&model.ScoringListing{
				IsVerifiedDeveloper:    dev,
				DeveloperVerifications: verifications(n),
			})
			if got < prev {
				t.Fatalf("boost decreased at %d verifications (dev=%v): %.1f < %.1f", n, dev, got, prev)
			}
			if got > 20 {
				t.Fatalf("boost %.1f exceeds 20 at %d verifications (dev=%v)", got, n, dev)
			}
			prev = got
		}
	}
}

func TestTrustBoost(t *testing.T) {
	tests := []struct {
		name  string
		trust float64
		want  float64
	}{
		{"negative", -50, 0},
		{"zero", 0, 0},
		{"small", 10, 1},
		{"at cap", 50, 5},
		{"above cap", 1000, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrustBoost(tt.trust); !almostEqual(got, tt.want, 0.0001) {
				t.Errorf("TrustBoost(%.0f) = %.2f, want %.2f", tt.trust, got, tt.want)
			}
		})
	}
}

func TestCalculateListingScore(t *testing.T) {
	svc := newTestScoreService()

	tests := []struct {
		name    string
		listing model.ScoringListing
		want    int
	}{
		{
			// no votes: 100 + 0 + 0
			name:    "best rank, no votes",
			listing: model.ScoringListing{PerformanceRank: 1, SuccessRate: 0.95},
			want:    100,
		},
		{
			// has votes: 100*0.5 + 95*0.3 + 0 = 78.5 → 79
			name:    "best rank, with votes",
			listing: model.ScoringListing{PerformanceRank: 1, SuccessRate: 0.95, VoteCount: 10, UpvoteCount: 10},
			want:    79,
		},
		{
			// no votes: 70 + 0 + min(5, 20*0.1) = 72
			name: "trust boost applies without votes",
			listing: model.ScoringListing{
				PerformanceRank: 3,
				Author:          &model.ListingAuthor{TrustScore: 20},
			},
			want: 72,
		},
		{
			// has votes: trust boost is not part of the weighted formula
			// 70*0.5 + 50*0.3 + 0 = 50
			name: "trust boost ignored with votes",
			listing: model.ScoringListing{
				PerformanceRank: 3,
				SuccessRate:     0.5,
				VoteCount:       4,
				Author:          &model.ListingAuthor{TrustScore: 20},
			},
			want: 50,
		},
		{
			// no votes: 40 + min(10 + min(15, 10), 20) = 60
			name: "verification capped at 20",
			listing: model.ScoringListing{
				PerformanceRank:        4,
				IsVerifiedDeveloper:    true,
				DeveloperVerifications: verifications(3),
			},
			want: 60,
		},
		{
			// has votes: 85*0.5 + 80*0.3 + 10 = 76.5 → 77
			name: "verification added in full with votes",
			listing: model.ScoringListing{
				PerformanceRank:     2,
				SuccessRate:         0.8,
				VoteCount:           5,
				IsVerifiedDeveloper: true,
			},
			want: 77,
		},
		{
			name: "capped at 100",
			listing: model.ScoringListing{
				PerformanceRank:        1,
				IsVerifiedDeveloper:    true,
				DeveloperVerifications: verifications(2),
				Author:                 &model.ListingAuthor{TrustScore: 100},
			},
			want: 100,
		},
		{
			name: "negative trust excludes the listing",
			listing: model.ScoringListing{
				PerformanceRank:        1,
				SuccessRate:            1,
				VoteCount:              100,
				IsVerifiedDeveloper:    true,
				DeveloperVerifications: verifications(2),
				Author:                 &model.ListingAuthor{TrustScore: -0.5},
			},
			want: 0,
		},
		{
			name:    "unknown rank",
			listing: model.ScoringListing{PerformanceRank: 42},
			want:    0,
		},
		{
			name:    "missing author treated as neutral",
			listing: model.ScoringListing{PerformanceRank: 2, Author: nil},
			want:    85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.CalculateListingScore(&tt.listing); got != tt.want {
				t.Errorf("CalculateListingScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateListingScore_NeverExceedsBounds(t *testing.T) {
	svc := newTestScoreService()

	for rank := 0; rank <= 9; rank++ {
		for _, votes := range []int{0, 1, 50} {
			for _, trust := range []float64{-10, 0, 10, 1000} {
				l := model.ScoringListing{
					PerformanceRank:        rank,
					SuccessRate:            1,
					VoteCount:              votes,
					IsVerifiedDeveloper:    true,
					DeveloperVerifications: verifications(5),
					Author:                 &model.ListingAuthor{TrustScore: trust},
				}
				got := svc.CalculateListingScore(&l)
				if got < 0 || got > 100 {
					t.Fatalf("score %d out of range (rank=%d votes=%d trust=%.0f)", got, rank, votes, trust)
				}
				if trust < 0 && got != 0 {
					t.Fatalf("score %d for negative trust, want 0", got)
				}
			}
		}
	}
}

func TestCalculateListingScore_Nil(t *testing.T) {
	if got := newTestScoreService().CalculateListingScore(nil); got != 0 {
		t.Errorf("CalculateListingScore(nil) = %d, want 0", got)
	}
}

func TestCalculateVoteWeight(t *testing.T) {
	tests := []struct {
		votes int
		want  float64
	}{
		{0, 1.0},
		{10, 1.301},
		{100, 2.041},
	}
	for _, tt := range tests {
		if got := CalculateVoteWeight(tt.votes); !almostEqual(got, tt.want, 0.001) {
			t.Errorf("CalculateVoteWeight(%d) = %.4f, want ~%.3f", tt.votes, got, tt.want)
		}
	}

	prev := CalculateVoteWeight(0)
	for v := 1; v <= 1000; v++ {
		w := CalculateVoteWeight(v)
		if w <= prev {
			t.Fatalf("vote weight not strictly increasing at %d: %.5f <= %.5f", v, w, prev)
		}
		prev = w
	}
}

func TestCalculateRecencyWeight(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		daysAgo int
		want    float64
	}{
		{"brand new", 0, 1.0},
		{"180 days", 180, 0.9},
		{"360 days", 360, 0.81},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRecencyWeight(now.AddDate(0, 0, -tt.daysAgo), now)
			if !almostEqual(got, tt.want, 0.001) {
				t.Errorf("CalculateRecencyWeight(%d days) = %.4f, want %.4f", tt.daysAgo, got, tt.want)
			}
		})
	}

	if got := CalculateRecencyWeight(now.Add(time.Hour), now); got != 1.0 {
		t.Errorf("future timestamp weight = %.4f, want 1.0", got)
	}
}

func TestAggregateSystemScore_Empty(t *testing.T) {
	if got := newTestScoreService().AggregateSystemScore(nil); got != 0 {
		t.Errorf("AggregateSystemScore(nil) = %d, want 0", got)
	}
}

func TestAggregateSystemScore_IdenticalListings(t *testing.T) {
	svc := newTestScoreService()
	l := model.ScoringListing{PerformanceRank: 2, SuccessRate: 0.8, VoteCount: 5, IsVerifiedDeveloper: true}
	single := svc.CalculateListingScore(&l)

	got := svc.AggregateSystemScore([]model.ScoringListing{l, l, l, l})
	if got != single {
		t.Errorf("aggregate of identical listings = %d, want %d", got, single)
	}
}

func TestAggregateSystemScore_VotesDominate(t *testing.T) {
	svc := newTestScoreService()
	listings := []model.ScoringListing{
		{PerformanceRank: 1},                // score 100, weight 1
		{PerformanceRank: 8, VoteCount: 90}, // score 0, weight log10(100) = 2
	}

	// (100*1 + 0*2) / 3 = 33.3 → 33
	if got := svc.AggregateSystemScore(listings); got != 33 {
		t.Errorf("AggregateSystemScore() = %d, want 33", got)
	}
}

func TestAggregateSystemScore_RecencyWeighting(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := DefaultScoringConfig()
	cfg.Weights.VoteCount = 0
	cfg.Weights.Recency = 1
	cfg.Now = func() time.Time { return now }
	svc := NewScoreService(cfg)

	listings := []model.ScoringListing{
		{PerformanceRank: 1, CreatedAt: now},                     // 100, weight 1.0
		{PerformanceRank: 8, CreatedAt: now.AddDate(0, 0, -360)}, // 0, weight 0.81
	}

	// 100 / 1.81 = 55.2 → 55
	if got := svc.AggregateSystemScore(listings); got != 55 {
		t.Errorf("AggregateSystemScore() with recency = %d, want 55", got)
	}
}

func TestAggregateSystemScore_ZeroWeights(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.Weights.VoteCount = 0
	svc := NewScoreService(cfg)

	if got := svc.AggregateSystemScore([]model.ScoringListing{{PerformanceRank: 1}}); got != 0 {
		t.Errorf("AggregateSystemScore() with zero weights = %d, want 0", got)
	}
}

func TestCalculateConfidenceLevel(t *testing.T) {
	svc := newTestScoreService()

	tests := []struct {
		name     string
		listings int
		votes    int
		want     model.ConfidenceLevel
	}{
		{"no data", 0, 0, model.ConfidenceLow},
		{"medium thresholds met", 3, 5, model.ConfidenceMedium},
		{"high thresholds met", 10, 20, model.ConfidenceHigh},
		{"many listings, few votes", 10, 5, model.ConfidenceMedium},
		{"few listings, many votes", 2, 30, model.ConfidenceLow},
		{"just below high votes", 50, 19, model.ConfidenceMedium},
		{"just below medium listings", 2, 5, model.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.CalculateConfidenceLevel(tt.listings, tt.votes); got != tt.want {
				t.Errorf("CalculateConfidenceLevel(%d, %d) = %s, want %s", tt.listings, tt.votes, got, tt.want)
			}
		})
	}
}

func sampleListings() []model.ScoringListing {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	logo := "dolphin.png"
	dolphin := &model.EmulatorRef{ID: "emu-dolphin", Name: "Dolphin", Logo: &logo}
	ppsspp := &model.EmulatorRef{ID: "emu-ppsspp", Name: "PPSSPP"}
	gamecube := &model.SystemRef{ID: "sys-gc", Name: "GameCube"}
	psp := &model.SystemRef{ID: "sys-psp", Name: "PSP"}

	return []model.ScoringListing{
		// score 100, weight 1
		{ID: "l1", PerformanceRank: 1, Emulator: dolphin, CreatedAt: base,
			Game: &model.GameRef{ID: "g-melee", System: gamecube}},
		// 70*0.5 + 50*0.3 + 5 = 55, weight log10(14)
		{ID: "l2", PerformanceRank: 3, SuccessRate: 0.5, VoteCount: 4, Emulator: dolphin,
			DeveloperVerifications: verifications(1), CreatedAt: base.AddDate(0, 1, 0),
			Game: &model.GameRef{ID: "g-melee", System: gamecube}},
		// 100 (verified dev, no votes)
		{ID: "l3", PerformanceRank: 1, IsVerifiedDeveloper: true, Emulator: ppsspp, CreatedAt: base.AddDate(0, 2, 0),
			Game: &model.GameRef{ID: "g-windwaker", System: gamecube}},
		// 0, no emulator
		{ID: "l4", PerformanceRank: 8, CreatedAt: base.AddDate(0, 3, 0),
			Game: &model.GameRef{ID: "g-patapon", System: psp}},
		// no system
		{ID: "l5", PerformanceRank: 2, Emulator: ppsspp, CreatedAt: base,
			Game: &model.GameRef{ID: "g-homebrew"}},
	}
}

func TestAggregateByEmulator(t *testing.T) {
	svc := newTestScoreService()
	got := svc.AggregateByEmulator(sampleListings())

	if len(got) != 2 {
		t.Fatalf("got %d emulator groups, want 2", len(got))
	}

	// PPSSPP: l3 (100) and l5 (85), both weight 1 → 92.5 → 93
	ppsspp := got[0]
	if ppsspp.EmulatorID != "emu-ppsspp" {
		t.Fatalf("first group = %s, want emu-ppsspp (highest score first)", ppsspp.EmulatorID)
	}
	if ppsspp.Score != 93 {
		t.Errorf("ppsspp score = %d, want 93", ppsspp.Score)
	}
	if ppsspp.AverageSuccessRate != nil {
		t.Errorf("ppsspp average success rate = %v, want nil (no voted listings)", *ppsspp.AverageSuccessRate)
	}
	if ppsspp.DeveloperListingCount != 1 {
		t.Errorf("ppsspp developer listings = %d, want 1", ppsspp.DeveloperListingCount)
	}

	// Dolphin: (100*1 + 55*log10(14)) / (1 + log10(14)) ≈ 75.97 → 76
	dolphin := got[1]
	if dolphin.Score != 76 {
		t.Errorf("dolphin score = %d, want 76", dolphin.Score)
	}
	if dolphin.EmulatorName != "Dolphin" || dolphin.EmulatorLogo == nil || *dolphin.EmulatorLogo != "dolphin.png" {
		t.Errorf("dolphin metadata not carried over: %+v", dolphin)
	}
	if !almostEqual(dolphin.AveragePerformanceRank, 2.0, 0.001) {
		t.Errorf("dolphin average rank = %.2f, want 2.00", dolphin.AveragePerformanceRank)
	}
	if dolphin.AverageSuccessRate == nil || !almostEqual(*dolphin.AverageSuccessRate, 0.5, 0.001) {
		t.Errorf("dolphin average success rate = %v, want 0.5 (voted listings only)", dolphin.AverageSuccessRate)
	}
	if dolphin.VerifiedListingCount != 1 {
		t.Errorf("dolphin verified listings = %d, want 1", dolphin.VerifiedListingCount)
	}
	if dolphin.ListingCount != 2 || dolphin.TotalVotes != 4 {
		t.Errorf("dolphin listings/votes = %d/%d, want 2/4", dolphin.ListingCount, dolphin.TotalVotes)
	}
	if dolphin.Confidence != model.ConfidenceLow {
		t.Errorf("dolphin confidence = %s, want low", dolphin.Confidence)
	}
}

func TestAggregateByEmulator_Empty(t *testing.T) {
	got := newTestScoreService().AggregateByEmulator(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("AggregateByEmulator(nil) = %v, want empty slice", got)
	}
}

func TestAggregateBySystem(t *testing.T) {
	svc := newTestScoreService()
	got := svc.AggregateBySystem(sampleListings())

	if len(got) != 2 {
		t.Fatalf("got %d system groups, want 2 (listing without system excluded)", len(got))
	}

	gc := got[0]
	if gc.SystemID != "sys-gc" || gc.SystemName != "GameCube" {
		t.Fatalf("first group = %s/%s, want sys-gc/GameCube", gc.SystemID, gc.SystemName)
	}
	// (100 + 55*log10(14) + 100) / (2 + log10(14)) ≈ 83.8 → 84
	if gc.Score != 84 {
		t.Errorf("gamecube score = %d, want 84", gc.Score)
	}
	if gc.GameCount != 2 {
		t.Errorf("gamecube game count = %d, want 2", gc.GameCount)
	}
	if gc.ListingCount != 3 || gc.TotalVotes != 4 {
		t.Errorf("gamecube listings/votes = %d/%d, want 3/4", gc.ListingCount, gc.TotalVotes)
	}
	wantLast := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if !gc.LastUpdated.Equal(wantLast) {
		t.Errorf("gamecube last updated = %s, want %s", gc.LastUpdated, wantLast)
	}
	if len(gc.Emulators) != 2 || gc.Emulators[0].EmulatorID != "emu-ppsspp" {
		t.Errorf("gamecube emulator breakdown = %+v, want ppsspp then dolphin", gc.Emulators)
	}
	if gc.Emulators[0].Score != 100 {
		t.Errorf("gamecube ppsspp score = %d, want 100", gc.Emulators[0].Score)
	}

	psp := got[1]
	if psp.SystemID != "sys-psp" || psp.Score != 0 {
		t.Errorf("psp group = %s score %d, want sys-psp score 0", psp.SystemID, psp.Score)
	}
	if psp.AverageSuccessRate != nil {
		t.Errorf("psp average success rate should be nil")
	}
	if len(psp.Emulators) != 0 {
		t.Errorf("psp emulator breakdown = %+v, want empty (listing has no emulator)", psp.Emulators)
	}
}
