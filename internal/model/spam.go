package model

// EntityType identifies which kind of user content is being checked.
type EntityType string

const (
	EntityListing EntityType = "listing"
	EntityComment EntityType = "comment"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	return t == EntityListing || t == EntityComment
}

// DetectionMethod names the detector that produced a verdict.
type DetectionMethod string

const (
	MethodRateLimiting       DetectionMethod = "rate_limiting"
	MethodDuplicateDetection DetectionMethod = "duplicate_detection"
	MethodContentAnalysis    DetectionMethod = "content_analysis"
	MethodPatternMatching    DetectionMethod = "pattern_matching"
)

// SpamCheckRequest is the API request body for a spam check.
type SpamCheckRequest struct {
	UserID     string     `json:"userId"`
	Content    string     `json:"content"`
	EntityType EntityType `json:"entityType"`
}

// SpamDetectionResult is the outcome of a spam check.
type SpamDetectionResult struct {
	IsSpam     bool            `json:"isSpam"`
	Confidence float64         `json:"confidence"`
	Method     DetectionMethod `json:"method"`
	Reason     string          `json:"reason,omitempty"`
}

// ContentRecord is a previously submitted piece of text by the same author.
type ContentRecord struct {
	Text string `json:"text"`
}
