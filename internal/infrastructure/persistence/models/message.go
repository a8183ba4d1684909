package models

import (
	"time"

	"github.com/contactdesk/backend/internal/domain/message"
)

// MessageModel is the persistence model for a message
type MessageModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the model to a domain message
func (m *MessageModel) ToDomain() *message.Message {
	return &message.Message{
		ID:        m.ID,
		Name:      m.Name,
		Body:      m.Message,
		CreatedAt: m.CreatedAt,
	}
}
