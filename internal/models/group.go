package models

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	AvatarURL   string
	CreatedAt   time.Time

	// Связи
	Members  []GroupMember `gorm:"foreignKey:GroupID"`
	Messages []Message     `gorm:"foreignKey:GroupID"`
}

// GroupMember членство пользователя в группе, пара (GroupID, UserID) уникальна
type GroupMember struct {
	ID       uint      `gorm:"primaryKey"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_member"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member"`
	IsAdmin  bool      `gorm:"default:false"`
	JoinedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}
