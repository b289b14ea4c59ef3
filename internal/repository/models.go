package repository

import (
	"time"

	"github.com/messagegate/smsgate/internal/domain"
)

// MessageModel is the persistence model for the outbound_messages table.
type MessageModel struct {
	ID                   uint64                `gorm:"primaryKey;autoIncrement"`
	TenantID             string                `gorm:"type:varchar(64);not null"`
	BridgeID             uint64                `gorm:"not null"`
	MobileNumber         string                `gorm:"type:varchar(32);not null"`
	Body                 string                `gorm:"type:text;not null"`
	SubmittedOn          *time.Time            `gorm:"type:timestamptz"`
	DeliveredOn          *time.Time            `gorm:"type:timestamptz"`
	DeliveryStatus       domain.DeliveryStatus `gorm:"type:varchar(20);not null"`
	DeliveryErrorMessage *string               `gorm:"type:text"`
	ExternalID           *string               `gorm:"type:varchar(64)"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (MessageModel) TableName() string {
	return "outbound_messages"
}

// BridgeModel is the persistence model for the sms_bridges table.
type BridgeModel struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	TenantID     string `gorm:"type:varchar(64);not null"`
	ProviderName string `gorm:"type:varchar(32);not null"`
	AccountID    string `gorm:"type:varchar(64);not null"`
	AuthToken    string `gorm:"type:varchar(128);not null"`
	PhoneNumber  string `gorm:"type:varchar(32);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (BridgeModel) TableName() string {
	return "sms_bridges"
}

func messageModelFromDomain(m *domain.Message) *MessageModel {
	if m == nil {
		return nil
	}

	return &MessageModel{
		ID:                   m.ID,
		TenantID:             m.TenantID,
		BridgeID:             m.BridgeID,
		MobileNumber:         m.MobileNumber,
		Body:                 m.Body,
		SubmittedOn:          m.SubmittedOn,
		DeliveredOn:          m.DeliveredOn,
		DeliveryStatus:       m.DeliveryStatus,
		DeliveryErrorMessage: m.DeliveryErrorMessage,
		ExternalID:           m.ExternalID,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func messageModelToDomain(m *MessageModel) *domain.Message {
	if m == nil {
		return nil
	}

	return &domain.Message{
		ID:                   m.ID,
		TenantID:             m.TenantID,
		BridgeID:             m.BridgeID,
		MobileNumber:         m.MobileNumber,
		Body:                 m.Body,
		SubmittedOn:          m.SubmittedOn,
		DeliveredOn:          m.DeliveredOn,
		DeliveryStatus:       m.DeliveryStatus,
		DeliveryErrorMessage: m.DeliveryErrorMessage,
		ExternalID:           m.ExternalID,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func bridgeModelToDomain(m *BridgeModel) *domain.Bridge {
	if m == nil {
		return nil
	}

	return &domain.Bridge{
		ID:           m.ID,
		TenantID:     m.TenantID,
		ProviderName: m.ProviderName,
		AccountID:    m.AccountID,
		AuthToken:    m.AuthToken,
		PhoneNumber:  m.PhoneNumber,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
