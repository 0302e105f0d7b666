package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// OutboundMailModel is a row of the mail outbox. Vars go through gorm's JSON
// serializer.
type OutboundMailModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Kind          string            `gorm:"type:varchar(40);not null"`
	Recipient     string            `gorm:"type:varchar(255);not null"`
	RecipientName string            `gorm:"type:varchar(255)"`
	Subject       string            `gorm:"type:varchar(255);not null"`
	Vars          map[string]string `gorm:"type:jsonb;serializer:json;not null"`
	State         string            `gorm:"type:varchar(16);not null;index:idx_outbound_mail_due,priority:1"`
	Attempts      int               `gorm:"not null;default:0"`
	LastError     string            `gorm:"type:text"`
	ProviderID    string            `gorm:"type:varchar(100)"`
	NextAttemptAt time.Time         `gorm:"not null;index:idx_outbound_mail_due,priority:2"`
	DeliveredAt   *time.Time        `gorm:"type:timestamptz"`
	CreatedAt     time.Time         `gorm:"not null"`
}

// TableName returns the table name for the OutboundMailModel.
func (OutboundMailModel) TableName() string {
	return "outbound_mail"
}

// ToEntity converts the row into a domain mail.
func (m *OutboundMailModel) ToEntity() *entity.OutboundMail {
	vars := m.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	return &entity.OutboundMail{
		ID:            m.ID,
		Kind:          entity.MailKind(m.Kind),
		To:            m.Recipient,
		ToName:        m.RecipientName,
		Subject:       m.Subject,
		Vars:          vars,
		State:         entity.MailState(m.State),
		Attempts:      m.Attempts,
		LastError:     m.LastError,
		ProviderID:    m.ProviderID,
		NextAttemptAt: m.NextAttemptAt,
		DeliveredAt:   m.DeliveredAt,
		CreatedAt:     m.CreatedAt,
	}
}

// OutboundMailFromEntity converts a domain mail into a row.
func OutboundMailFromEntity(mail *entity.OutboundMail) *OutboundMailModel {
	return &OutboundMailModel{
		ID:            mail.ID,
		Kind:          string(mail.Kind),
		Recipient:     mail.To,
		RecipientName: mail.ToName,
		Subject:       mail.Subject,
		Vars:          mail.Vars,
		State:         string(mail.State),
		Attempts:      mail.Attempts,
		LastError:     mail.LastError,
		ProviderID:    mail.ProviderID,
		NextAttemptAt: mail.NextAttemptAt,
		DeliveredAt:   mail.DeliveredAt,
		CreatedAt:     mail.CreatedAt,
	}
}
