package models

import (
	"time"

	"github.com/househero/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	BaseModel
	JobID             int64           `gorm:"not null;index"`
	CustomerID        *int64          `gorm:"index"`
	ProviderID        *int64          `gorm:"index"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod     payment.Method  `gorm:"type:varchar(20);not null"`
	Status            payment.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	ProofOfPaymentURL string          `gorm:"type:varchar(500)"`
	CustomerPaidAt    *time.Time
	ReleasedAt        *time.Time
	ReleasedBy        string `gorm:"type:varchar(200)"`
	RefundReason      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		ID:                m.ID,
		JobID:             m.JobID,
		CustomerID:        m.CustomerID,
		ProviderID:        m.ProviderID,
		Amount:            m.Amount,
		DepositAmount:     m.DepositAmount,
		PaymentMethod:     m.PaymentMethod,
		Status:            m.Status,
		ProofOfPaymentURL: m.ProofOfPaymentURL,
		CustomerPaidAt:    m.CustomerPaidAt,
		ReleasedAt:        m.ReleasedAt,
		ReleasedBy:        m.ReleasedBy,
		RefundReason:      m.RefundReason,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.ID = p.ID
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
	m.JobID = p.JobID
	m.CustomerID = p.CustomerID
	m.ProviderID = p.ProviderID
	m.Amount = p.Amount
	m.DepositAmount = p.DepositAmount
	m.PaymentMethod = p.PaymentMethod
	m.Status = p.Status
	m.ProofOfPaymentURL = p.ProofOfPaymentURL
	m.CustomerPaidAt = p.CustomerPaidAt
	m.ReleasedAt = p.ReleasedAt
	m.ReleasedBy = p.ReleasedBy
	m.RefundReason = p.RefundReason
}
