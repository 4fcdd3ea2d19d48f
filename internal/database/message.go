package database

import (
	"context"

	"github.com/thereayou/groupchat/internal/models"
)

func (d *Database) CreateMessage(ctx context.Context, message *models.Message) error {
	return d.db.WithContext(ctx).Create(message).Error
}

// GetMessageWithSender получает одно сообщение вместе с отправителем
func (d *Database) GetMessageWithSender(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := d.db.WithContext(ctx).Preload("Sender").First(&message, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &message, nil
}

// GetGroupMessages получает историю группы, старые сообщения первыми.
// limit <= 0 означает всю историю; beforeID ограничивает выборку
// сообщениями старше указанного.
func (d *Database) GetGroupMessages(ctx context.Context, groupID uint, limit int, beforeID *uint) ([]models.Message, error) {
	var messages []models.Message

	query := d.db.WithContext(ctx).Preload("Sender").Where("group_id = ?", groupID)
	if beforeID != nil {
		query = query.Where("id < ?", *beforeID)
	}

	if limit <= 0 {
		err := query.Order("created_at ASC, id ASC").Find(&messages).Error
		return messages, err
	}

	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Разворачиваем порядок, чтобы старые сообщения были первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
