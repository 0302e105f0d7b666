package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// SubscriptionModel is the denormalized entitlement record, one row per user.
type SubscriptionModel struct {
	UserID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IsPro             bool       `gorm:"not null;default:false"`
	Status            string     `gorm:"type:varchar(20);not null"`
	ExpiresAt         *time.Time `gorm:"type:timestamptz"`
	EntitlementID     string     `gorm:"type:varchar(100)"`
	BillingCustomerID string     `gorm:"type:varchar(255)"`
	SyncedAt          time.Time  `gorm:"not null"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for the SubscriptionModel.
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToEntity converts a SubscriptionModel to a domain Subscription entity.
func (m *SubscriptionModel) ToEntity() *entity.Subscription {
	return &entity.Subscription{
		UserID:            m.UserID,
		IsPro:             m.IsPro,
		Status:            entity.EntitlementStatus(m.Status),
		ExpiresAt:         m.ExpiresAt,
		EntitlementID:     m.EntitlementID,
		BillingCustomerID: m.BillingCustomerID,
		SyncedAt:          m.SyncedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// SubscriptionFromEntity creates a SubscriptionModel from a domain Subscription entity.
func SubscriptionFromEntity(s *entity.Subscription) *SubscriptionModel {
	return &SubscriptionModel{
		UserID:            s.UserID,
		IsPro:             s.IsPro,
		Status:            string(s.Status),
		ExpiresAt:         s.ExpiresAt,
		EntitlementID:     s.EntitlementID,
		BillingCustomerID: s.BillingCustomerID,
		SyncedAt:          s.SyncedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
