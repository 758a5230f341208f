// Package trust computes the provider trust score, a weighted signal built
// from job history, customer ratings and verification status.
package trust

import (
	"context"
	"math"
	"time"
)

// VerificationStatus of a provider profile
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "verified"
	VerificationPending  VerificationStatus = "pending"
	VerificationRejected VerificationStatus = "rejected"
)

// Level maps a verification status onto the 0..3 scale used by the score
func (v VerificationStatus) Level() int {
	switch v {
	case VerificationVerified:
		return 3
	case VerificationPending:
		return 1
	default:
		return 0
	}
}

// Stats is the raw input to ComputeScore
type Stats struct {
	TotalJobs          int
	CompletedJobs      int
	CancelledJobs      int
	OnTimeCompletions  int
	Ratings            []int
	VerificationStatus VerificationStatus
}

// Score is a computed trust score for one provider
type Score struct {
	ProviderID        int64     `json:"providerId"`
	ReliabilityScore  float64   `json:"reliabilityScore"`
	CompletionRate    float64   `json:"completionRate"`
	CancellationRate  float64   `json:"cancellationRate"`
	AverageRating     float64   `json:"averageRating"`
	VerificationLevel int       `json:"verificationLevel"`
	TrustScore        float64   `json:"trustScore"`
	TotalJobs         int       `json:"totalJobs"`
	CompletedJobs     int       `json:"completedJobs"`
	CancelledJobs     int       `json:"cancelledJobs"`
	TotalReviews      int       `json:"totalReviews"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Weights of each component in the final score
const (
	weightReliability  = 0.3
	weightCompletion   = 0.3
	weightCancellation = 0.2
	weightRating       = 0.15
	weightVerification = 0.05

	baseReliability = 50.0
)

// ComputeScore derives the trust score from stats. All component scores
// are clamped to 0..100.
func ComputeScore(providerID int64, s Stats) Score {
	var completionRate, cancellationRate float64
	if s.TotalJobs > 0 {
		completionRate = float64(s.CompletedJobs) / float64(s.TotalJobs)
		cancellationRate = float64(s.CancelledJobs) / float64(s.TotalJobs)
	}

	var averageRating float64
	if len(s.Ratings) > 0 {
		sum := 0
		for _, r := range s.Ratings {
			sum += r
		}
		averageRating = float64(sum) / float64(len(s.Ratings))
	}

	reliability := baseReliability
	if s.TotalJobs > 0 {
		onTimeRate := float64(s.OnTimeCompletions) / float64(s.TotalJobs)
		reliability += completionRate * 40
		reliability -= cancellationRate * 30
		reliability += onTimeRate * 20
	}
	reliability = clamp(reliability)

	level := s.VerificationStatus.Level()

	score := reliability*weightReliability +
		completionRate*100*weightCompletion +
		(1-cancellationRate)*100*weightCancellation +
		averageRating*20*weightRating +
		float64(level)*33.33*weightVerification

	return Score{
		ProviderID:        providerID,
		ReliabilityScore:  reliability,
		CompletionRate:    completionRate,
		CancellationRate:  cancellationRate,
		AverageRating:     averageRating,
		VerificationLevel: level,
		TrustScore:        clamp(score),
		TotalJobs:         s.TotalJobs,
		CompletedJobs:     s.CompletedJobs,
		CancelledJobs:     s.CancelledJobs,
		TotalReviews:      len(s.Ratings),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Repository persists computed scores
type Repository interface {
	// FindByProviderID returns nil, nil when no score is stored
	FindByProviderID(ctx context.Context, providerID int64) (*Score, error)

	// Upsert creates or replaces the provider's score
	Upsert(ctx context.Context, score *Score) error
}

// ReviewRepository reads the ratings customers left for a provider
type ReviewRepository interface {
	RatingsForProvider(ctx context.Context, providerID int64) ([]int, error)
}
