package models

import (
	"time"

	"github.com/househero/backend/internal/domain/trust"
)

// TrustScoreModel stores the last computed trust score per provider.
type TrustScoreModel struct {
	ProviderID        int64   `gorm:"primaryKey;autoIncrement:false"`
	ReliabilityScore  float64 `gorm:"not null;default:0"`
	CompletionRate    float64 `gorm:"not null;default:0"`
	CancellationRate  float64 `gorm:"not null;default:0"`
	AverageRating     float64 `gorm:"not null;default:0"`
	VerificationLevel int     `gorm:"not null;default:0"`
	TrustScore        float64 `gorm:"not null;default:0"`
	TotalJobs         int     `gorm:"not null;default:0"`
	CompletedJobs     int     `gorm:"not null;default:0"`
	CancelledJobs     int     `gorm:"not null;default:0"`
	TotalReviews      int     `gorm:"not null;default:0"`
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (TrustScoreModel) TableName() string {
	return "trust_scores"
}

// ToDomain converts the persistence model to a domain Score.
func (m *TrustScoreModel) ToDomain() *trust.Score {
	return &trust.Score{
		ProviderID:        m.ProviderID,
		ReliabilityScore:  m.ReliabilityScore,
		CompletionRate:    m.CompletionRate,
		CancellationRate:  m.CancellationRate,
		AverageRating:     m.AverageRating,
		VerificationLevel: m.VerificationLevel,
		TrustScore:        m.TrustScore,
		TotalJobs:         m.TotalJobs,
		CompletedJobs:     m.CompletedJobs,
		CancelledJobs:     m.CancelledJobs,
		TotalReviews:      m.TotalReviews,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Score.
func (m *TrustScoreModel) FromDomain(s *trust.Score) {
	m.ProviderID = s.ProviderID
	m.ReliabilityScore = s.ReliabilityScore
	m.CompletionRate = s.CompletionRate
	m.CancellationRate = s.CancellationRate
	m.AverageRating = s.AverageRating
	m.VerificationLevel = s.VerificationLevel
	m.TrustScore = s.TrustScore
	m.TotalJobs = s.TotalJobs
	m.CompletedJobs = s.CompletedJobs
	m.CancelledJobs = s.CancelledJobs
	m.TotalReviews = s.TotalReviews
	m.UpdatedAt = s.UpdatedAt
}
