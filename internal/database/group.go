package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateGroup создает группу и добавляет создателя администратором
// в одной транзакции
func (d *Database) CreateGroup(ctx context.Context, group *models.Group, creatorID uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		return tx.Create(&models.GroupMember{
			GroupID:  group.ID,
			UserID:   creatorID,
			IsAdmin:  true,
			JoinedAt: time.Now(),
		}).Error
	})
}

func (d *Database) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := d.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (d *Database) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := d.db.WithContext(ctx).Order("id ASC").Find(&groups).Error
	return groups, err
}

// GetUserGroups возвращает группы, в которых состоит пользователь
func (d *Database) GetUserGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := d.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.id ASC").
		Find(&groups).Error
	return groups, err
}

func (d *Database) GetGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := d.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	return members, err
}

// AddGroupMember идемпотентно добавляет участника. Возвращает true,
// если запись была создана.
func (d *Database) AddGroupMember(ctx context.Context, groupID uint, userID uuid.UUID, isAdmin bool) (bool, error) {
	member := models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		IsAdmin:  isAdmin,
		JoinedAt: time.Now(),
	}

	res := d.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) IsGroupMember(ctx context.Context, groupID uint, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
