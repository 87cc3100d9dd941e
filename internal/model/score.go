package model

import "time"

// ConfidenceLevel is a coarse label for how much data backs an aggregated score.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// EmulatorScore is the aggregated compatibility of one emulator.
type EmulatorScore struct {
	EmulatorID             string          `json:"emulatorId"`
	EmulatorName           string          `json:"emulatorName"`
	EmulatorLogo           *string         `json:"emulatorLogo,omitempty"`
	Score                  int             `json:"score"`
	ListingCount           int             `json:"listingCount"`
	TotalVotes             int             `json:"totalVotes"`
	AveragePerformanceRank float64         `json:"averagePerformanceRank"`
	AverageSuccessRate     *float64        `json:"averageSuccessRate"`
	VerifiedListingCount   int             `json:"verifiedListingCount"`
	DeveloperListingCount  int             `json:"developerListingCount"`
	Confidence             ConfidenceLevel `json:"confidence"`
}

// SystemScore is the aggregated compatibility of one system, with a per-emulator breakdown.
type SystemScore struct {
	SystemID               string          `json:"systemId"`
	SystemName             string          `json:"systemName"`
	Score                  int             `json:"score"`
	ListingCount           int             `json:"listingCount"`
	GameCount              int             `json:"gameCount"`
	TotalVotes             int             `json:"totalVotes"`
	AveragePerformanceRank float64         `json:"averagePerformanceRank"`
	AverageSuccessRate     *float64        `json:"averageSuccessRate"`
	LastUpdated            time.Time       `json:"lastUpdated"`
	Emulators              []EmulatorScore `json:"emulators"`
	Confidence             ConfidenceLevel `json:"confidence"`
}

// ListingScoreResponse is the API response for a single listing score.
type ListingScoreResponse struct {
	ListingID string `json:"listingId"`
	Score     int    `json:"score"`
}

// ScoreOverviewResponse bundles emulator and system aggregates for one scope.
type ScoreOverviewResponse struct {
	Emulators   []EmulatorScore `json:"emulators"`
	Systems     []SystemScore   `json:"systems"`
	GeneratedAt string          `json:"generatedAt"`
}
