package models

import (
	"time"

	"github.com/google/uuid"
)

// Message после создания не изменяется
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	GroupID   uint      `gorm:"not null;index"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"not null"`
	ImageURL  *string
	CreatedAt time.Time `gorm:"index"`

	// Связи
	Sender User `gorm:"foreignKey:SenderID"`
}
