package models

import (
	"time"

	"github.com/househero/backend/internal/domain/servicerequest"
	"github.com/shopspring/decimal"
)

// ServiceRequestModel is the persistence model for the ServiceRequest domain entity.
// The primary key column is request_id.
type ServiceRequestModel struct {
	RequestID       int64                         `gorm:"column:request_id;primaryKey;autoIncrement"`
	CustomerName    string                        `gorm:"type:varchar(200);not null"`
	CustomerEmail   string                        `gorm:"type:varchar(200);not null;index"`
	CustomerPhone   string                        `gorm:"type:varchar(50)"`
	CustomerAddress string                        `gorm:"type:text"`
	PreferredDate   time.Time                     `gorm:"not null"`
	PreferredTime   string                        `gorm:"type:varchar(20)"`
	SelectedItems   []servicerequest.SelectedItem `gorm:"type:jsonb;serializer:json"`

	CustomerTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ProviderTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Commission    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Status             servicerequest.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	Priority           string                `gorm:"type:varchar(20);not null;default:'normal'"`
	AssignedProviderID *int64                `gorm:"index"`
	ProviderEmail      string                `gorm:"type:varchar(200)"`

	PaymentMethod           string `gorm:"type:varchar(20)"`
	CustomerPaymentReceived bool   `gorm:"not null;default:false"`
	ProviderPaymentMade     bool   `gorm:"not null;default:false"`
	CommissionCollected     bool   `gorm:"not null;default:false"`

	CustomerConfirmedCompletion bool `gorm:"not null;default:false"`
	ProviderConfirmedCompletion bool `gorm:"not null;default:false"`

	AdminNotes  string `gorm:"type:text"`
	AuditLog    string `gorm:"type:text"`
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ServiceRequestModel) TableName() string {
	return "service_requests"
}

// ToDomain converts the persistence model to a domain ServiceRequest entity.
func (m *ServiceRequestModel) ToDomain() *servicerequest.ServiceRequest {
	return &servicerequest.ServiceRequest{
		RequestID:                   m.RequestID,
		CustomerName:                m.CustomerName,
		CustomerEmail:               m.CustomerEmail,
		CustomerPhone:               m.CustomerPhone,
		CustomerAddress:             m.CustomerAddress,
		PreferredDate:               m.PreferredDate,
		PreferredTime:               m.PreferredTime,
		SelectedItems:               m.SelectedItems,
		CustomerTotal:               m.CustomerTotal,
		ProviderTotal:               m.ProviderTotal,
		Commission:                  m.Commission,
		Status:                      m.Status,
		Priority:                    m.Priority,
		AssignedProviderID:          m.AssignedProviderID,
		ProviderEmail:               m.ProviderEmail,
		PaymentMethod:               m.PaymentMethod,
		CustomerPaymentReceived:     m.CustomerPaymentReceived,
		ProviderPaymentMade:         m.ProviderPaymentMade,
		CommissionCollected:         m.CommissionCollected,
		CustomerConfirmedCompletion: m.CustomerConfirmedCompletion,
		ProviderConfirmedCompletion: m.ProviderConfirmedCompletion,
		AdminNotes:                  m.AdminNotes,
		CompletedAt:                 m.CompletedAt,
		CreatedAt:                   m.CreatedAt,
		UpdatedAt:                   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain ServiceRequest entity.
// AuditLog is not part of the entity and is left untouched.
func (m *ServiceRequestModel) FromDomain(r *servicerequest.ServiceRequest) {
	m.RequestID = r.RequestID
	m.CustomerName = r.CustomerName
	m.CustomerEmail = r.CustomerEmail
	m.CustomerPhone = r.CustomerPhone
	m.CustomerAddress = r.CustomerAddress
	m.PreferredDate = r.PreferredDate
	m.PreferredTime = r.PreferredTime
	m.SelectedItems = r.SelectedItems
	m.CustomerTotal = r.CustomerTotal
	m.ProviderTotal = r.ProviderTotal
	m.Commission = r.Commission
	m.Status = r.Status
	m.Priority = r.Priority
	m.AssignedProviderID = r.AssignedProviderID
	m.ProviderEmail = r.ProviderEmail
	m.PaymentMethod = r.PaymentMethod
	m.CustomerPaymentReceived = r.CustomerPaymentReceived
	m.ProviderPaymentMade = r.ProviderPaymentMade
	m.CommissionCollected = r.CommissionCollected
	m.CustomerConfirmedCompletion = r.CustomerConfirmedCompletion
	m.ProviderConfirmedCompletion = r.ProviderConfirmedCompletion
	m.AdminNotes = r.AdminNotes
	m.CompletedAt = r.CompletedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}
