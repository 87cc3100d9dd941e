package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Producdevity/EmuReady-sub005/internal/metrics"
	"github.com/Producdevity/EmuReady-sub005/internal/model"
	"github.com/Producdevity/EmuReady-sub005/pkg/hash"
)

// MaxContentLength is the number of runes analyzed per check. Longer content is truncated.
const MaxContentLength = 10000

// ContentStore is the read-only view of previously submitted content that the
// rate limiting and duplicate detectors need.
type ContentStore interface {
	CountRecentByAuthor(ctx context.Context, entityType model.EntityType, authorID string, since time.Time) (int, error)
	FindRecentContentByAuthor(ctx context.Context, entityType model.EntityType, authorID string, since time.Time, limit int, mostRecentFirst bool) ([]model.ContentRecord, error)
}

// SpamDetectionConfig is fixed at construction time.
type SpamDetectionConfig struct {
	EnableRateLimiting       bool
	EnableDuplicateDetection bool
	EnableContentAnalysis    bool
	EnablePatternMatching    bool

	RateLimitWindowMinutes int
	RateLimitMax           int

	DuplicateLookback   time.Duration
	DuplicateLimit      int
	DuplicateThreshold  float64
	DuplicateMinMatches int

	// DetectorTimeout bounds each detector. A detector that exceeds it abstains.
	// Zero disables the bound.
	DetectorTimeout time.Duration
}

// DefaultSpamDetectionConfig enables every detector with a 3-per-5-minutes rate
// limit, a 24h/100-record duplicate lookback at similarity 0.9 (2 matches) and a
// 2s per-detector timeout.
func DefaultSpamDetectionConfig() SpamDetectionConfig {
	return SpamDetectionConfig{
		EnableRateLimiting:       true,
		EnableDuplicateDetection: true,
		EnableContentAnalysis:    true,
		EnablePatternMatching:    true,
		RateLimitWindowMinutes:   5,
		RateLimitMax:             3,
		DuplicateLookback:        24 * time.Hour,
		DuplicateLimit:           100,
		DuplicateThreshold:       0.9,
		DuplicateMinMatches:      2,
		DetectorTimeout:          2 * time.Second,
	}
}

// DetectFunc inspects one request and returns a verdict, or nil when it has
// nothing to say. Returning an error makes the detector abstain.
type DetectFunc func(ctx context.Context, req model.SpamCheckRequest, store ContentStore) (*model.SpamDetectionResult, error)

// Detector is one named stage of the spam pipeline.
type Detector struct {
	Method model.DetectionMethod
	Detect DetectFunc
}

// SpamService classifies submitted text with an ordered, short-circuiting
// pipeline of detectors. It is safe for concurrent use and meant to be reused.
type SpamService struct {
	store     ContentStore
	cfg       SpamDetectionConfig
	detectors []Detector
	logger    zerolog.Logger
}

// NewSpamService builds the pipeline in its fixed order:
// rate limiting → duplicate detection → content analysis → pattern matching.
func NewSpamService(store ContentStore, cfg SpamDetectionConfig, logger zerolog.Logger) *SpamService {
	return NewSpamServiceWithClock(store, cfg, logger, time.Now)
}

// NewSpamServiceWithClock is NewSpamService with an injectable clock.
func NewSpamServiceWithClock(store ContentStore, cfg SpamDetectionConfig, logger zerolog.Logger, now func() time.Time) *SpamService {
	var detectors []Detector
	if cfg.EnableRateLimiting {
		detectors = append(detectors, Detector{model.MethodRateLimiting, rateLimitDetector(cfg, now)})
	}
	if cfg.EnableDuplicateDetection {
		detectors = append(detectors, Detector{model.MethodDuplicateDetection, duplicateDetector(cfg, now)})
	}
	if cfg.EnableContentAnalysis {
		detectors = append(detectors, Detector{model.MethodContentAnalysis, detectContentAnalysis})
	}
	if cfg.EnablePatternMatching {
		detectors = append(detectors, Detector{model.MethodPatternMatching, detectPatternMatching})
	}

	return &SpamService{
		store:     store,
		cfg:       cfg,
		detectors: detectors,
		logger:    logger.With().Str("component", "spam").Logger(),
	}
}

// Methods lists the enabled detectors in pipeline order.
func (s *SpamService) Methods() []model.DetectionMethod {
	methods := make([]model.DetectionMethod, len(s.detectors))
	for i, d := range s.detectors {
		methods[i] = d.Method
	}
	return methods
}

// DetectorTimeout is the per-detector deadline.
func (s *SpamService) DetectorTimeout() time.Duration {
	return s.cfg.DetectorTimeout
}

// DetectSpam runs the pipeline and returns the first spam verdict. It never
// fails: detectors that error or time out are logged and skipped, and the
// neutral non-spam result is returned when nothing fires.
func (s *SpamService) DetectSpam(ctx context.Context, req model.SpamCheckRequest) model.SpamDetectionResult {
	req.Content = truncateRunes(req.Content, MaxContentLength)

	log := s.logger.With().
		Str("check_id", uuid.NewString()).
		Str("entity_type", string(req.EntityType)).
		Str("content_fp", hash.Fingerprint(req.Content, 12)).
		Logger()

	result := runDetectors(ctx, s.detectors, req, s.store, s.cfg.DetectorTimeout, log)

	verdict := "clean"
	if result.IsSpam {
		verdict = "spam"
		log.Info().
			Str("method", string(result.Method)).
			Float64("confidence", result.Confidence).
			Str("reason", result.Reason).
			Msg("content flagged as spam")
	}
	metrics.SpamChecksTotal.WithLabelValues(string(result.Method), verdict).Inc()

	return result
}

// cleanResult is returned when no enabled detector fires.
func cleanResult() model.SpamDetectionResult {
	return model.SpamDetectionResult{
		IsSpam:     false,
		Confidence: 0,
		Method:     model.MethodContentAnalysis,
	}
}

// runDetectors runs detectors in order; the first spam verdict wins.
// Failed detectors are logged and treated as abstaining.
func runDetectors(ctx context.Context, detectors []Detector, req model.SpamCheckRequest, store ContentStore, timeout time.Duration, log zerolog.Logger) model.SpamDetectionResult {
	for _, d := range detectors {
		verdict, err := runDetector(ctx, d, req, store, timeout)
		if err != nil {
			reason := "error"
			if errors.Is(err, context.DeadlineExceeded) {
				reason = "timeout"
			}
			metrics.DetectorFailures.WithLabelValues(string(d.Method), reason).Inc()
			log.Warn().Err(err).
				Str("method", string(d.Method)).
				Str("reason", reason).
				Msg("spam detector abstained")
			continue
		}
		if verdict != nil && verdict.IsSpam {
			return *verdict
		}
	}
	return cleanResult()
}

type detectorOutcome struct {
	verdict *model.SpamDetectionResult
	err     error
}

// runDetector runs d in its own goroutine so a store call that ignores its
// context still cannot hold up the pipeline past timeout. A late result is dropped.
func runDetector(ctx context.Context, d Detector, req model.SpamCheckRequest, store ContentStore, timeout time.Duration) (*model.SpamDetectionResult, error) {
	defer metrics.ObserveSince(metrics.DetectorDuration.WithLabelValues(string(d.Method)), time.Now())

	dctx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		dctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan detectorOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- detectorOutcome{err: fmt.Errorf("detector panicked: %v", r)}
			}
		}()
		verdict, err := d.Detect(dctx, req, store)
		done <- detectorOutcome{verdict: verdict, err: err}
	}()

	select {
	case out := <-done:
		return out.verdict, out.err
	case <-dctx.Done():
		return nil, dctx.Err()
	}
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
