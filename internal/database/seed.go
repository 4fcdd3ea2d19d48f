package database

import (
	"context"

	"github.com/thereayou/groupchat/internal/models"
)

const defaultGroupName = "General Chat"

// EnsureDefaultGroup создает общую группу, если групп еще нет
func (d *Database) EnsureDefaultGroup(ctx context.Context) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.Group{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	group := &models.Group{
		Name:        defaultGroupName,
		Description: "A place for everyone to chat",
		AvatarURL:   "https://api.dicebear.com/7.x/initials/svg?seed=GC",
	}
	if err := d.db.WithContext(ctx).Create(group).Error; err != nil {
		return false, err
	}
	return true, nil
}
