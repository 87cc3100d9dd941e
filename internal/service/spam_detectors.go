package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Producdevity/EmuReady-sub005/internal/model"
	"github.com/Producdevity/EmuReady-sub005/pkg/textsim"
)

const (
	rateLimitConfidence = 0.95
	duplicateConfidence = 0.9
)

// rateLimitDetector flags an author who already created RateLimitMax or more
// records of the same type inside the trailing window.
func rateLimitDetector(cfg SpamDetectionConfig, now func() time.Time) DetectFunc {
	window := time.Duration(cfg.RateLimitWindowMinutes) * time.Minute

	return func(ctx context.Context, req model.SpamCheckRequest, store ContentStore) (*model.SpamDetectionResult, error) {
		count, err := store.CountRecentByAuthor(ctx, req.EntityType, req.UserID, now().Add(-window))
		if err != nil {
			return nil, fmt.Errorf("counting recent %ss: %w", req.EntityType, err)
		}
		if count < cfg.RateLimitMax {
			return nil, nil
		}
		return &model.SpamDetectionResult{
			IsSpam:     true,
			Confidence: rateLimitConfidence,
			Method:     model.MethodRateLimiting,
			Reason:     fmt.Sprintf("Rate limit exceeded: %d %ss in %d minutes", count, req.EntityType, cfg.RateLimitWindowMinutes),
		}, nil
	}
}

// duplicateDetector flags content that near-duplicates at least
// DuplicateMinMatches of the author's recent records.
func duplicateDetector(cfg SpamDetectionConfig, now func() time.Time) DetectFunc {
	return func(ctx context.Context, req model.SpamCheckRequest, store ContentStore) (*model.SpamDetectionResult, error) {
		candidate := textsim.NormalizeContent(req.Content)

		records, err := store.FindRecentContentByAuthor(ctx, req.EntityType, req.UserID,
			now().Add(-cfg.DuplicateLookback), cfg.DuplicateLimit, true)
		if err != nil {
			return nil, fmt.Errorf("loading recent %ss: %w", req.EntityType, err)
		}

		matches := 0
		for _, rec := range records {
			if textsim.CalculateSimilarity(candidate, textsim.NormalizeContent(rec.Text)) > cfg.DuplicateThreshold {
				matches++
			}
		}
		if matches < cfg.DuplicateMinMatches {
			return nil, nil
		}
		return &model.SpamDetectionResult{
			IsSpam:     true,
			Confidence: duplicateConfidence,
			Method:     model.MethodDuplicateDetection,
			Reason:     fmt.Sprintf("Duplicate content detected: %d similar %ss in the last %s", matches, req.EntityType, formatLookback(cfg.DuplicateLookback)),
		}, nil
	}
}

func detectContentAnalysis(_ context.Context, req model.SpamCheckRequest, _ ContentStore) (*model.SpamDetectionResult, error) {
	score, reasons := AnalyzeContent(req.Content)
	return scoredVerdict(model.MethodContentAnalysis, "Suspicious content", score, reasons), nil
}

func detectPatternMatching(_ context.Context, req model.SpamCheckRequest, _ ContentStore) (*model.SpamDetectionResult, error) {
	score, reasons := MatchPatterns(req.Content)
	return scoredVerdict(model.MethodPatternMatching, "Spam patterns matched", score, reasons), nil
}

// scoredVerdict returns a spam result once score reaches spamThreshold, or nil.
func scoredVerdict(method model.DetectionMethod, label string, score float64, reasons []string) *model.SpamDetectionResult {
	if score < spamThreshold {
		return nil
	}
	return &model.SpamDetectionResult{
		IsSpam:     true,
		Confidence: math.Min(score, maxConfidence),
		Method:     method,
		Reason:     label + ": " + strings.Join(reasons, ", "),
	}
}

func formatLookback(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
