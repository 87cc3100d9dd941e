package model

import "time"

// ScoringListing is the subset of a compatibility report needed to score it.
type ScoringListing struct {
	ID                     string                  `json:"id"`
	PerformanceRank        int                     `json:"performanceRank"`
	SuccessRate            float64                 `json:"successRate"`
	VoteCount              int                     `json:"voteCount"`
	UpvoteCount            int                     `json:"upvoteCount"`
	DownvoteCount          int                     `json:"downvoteCount"`
	IsVerifiedDeveloper    bool                    `json:"isVerifiedDeveloper"`
	DeveloperVerifications []DeveloperVerification `json:"developerVerifications"`
	Author                 *ListingAuthor          `json:"author,omitempty"`
	CreatedAt              time.Time               `json:"createdAt"`
	Emulator               *EmulatorRef            `json:"emulator,omitempty"`
	Game                   *GameRef                `json:"game,omitempty"`
}

// ListingAuthor carries the author's community reputation.
type ListingAuthor struct {
	ID         string  `json:"id"`
	TrustScore float64 `json:"trustScore"`
}

// DeveloperVerification is an explicit endorsement of a listing by a recognized developer.
type DeveloperVerification struct {
	ID         string    `json:"id"`
	VerifiedBy string    `json:"verifiedBy"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

type EmulatorRef struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Logo *string `json:"logo,omitempty"`
}

type GameRef struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	System *SystemRef `json:"system,omitempty"`
}

type SystemRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthorTrust returns the author's trust score, treating a missing author as neutral.
func (l *ScoringListing) AuthorTrust() float64 {
	if l.Author == nil {
		return 0
	}
	return l.Author.TrustScore
}

// EmulatorID returns the grouping key for per-emulator aggregation, or "" when absent.
func (l *ScoringListing) EmulatorID() string {
	if l.Emulator == nil {
		return ""
	}
	return l.Emulator.ID
}

// SystemID returns the grouping key for per-system aggregation, or "" when absent.
func (l *ScoringListing) SystemID() string {
	if l.Game == nil || l.Game.System == nil {
		return ""
	}
	return l.Game.System.ID
}
