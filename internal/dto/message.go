package dto

import (
	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

// SendMessageRequest тело POST /api/groups/:id/messages.
// content обязателен как поле, но может быть пустым.
type SendMessageRequest struct {
	Content  *string `json:"content" binding:"required,max=4000"`
	ImageURL *string `json:"imageUrl" binding:"omitempty,max=2048"`
}

// MessageView сообщение вместе с отправителем; тот же вид уходит
// в кадре {type: "message"}
type MessageView struct {
	ID        uint      `json:"id"`
	GroupID   uint      `json:"groupId"`
	SenderID  uuid.UUID `json:"senderId"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	CreatedAt string    `json:"createdAt"`
	Sender    UserView  `json:"sender"`
}

func NewMessageView(m *models.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		GroupID:   m.GroupID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		ImageURL:  m.ImageURL,
		CreatedAt: FormatTime(m.CreatedAt),
		Sender:    NewUserView(&m.Sender),
	}
}

// CreatedMessageView ответ 201 без данных отправителя
type CreatedMessageView struct {
	ID        uint      `json:"id"`
	GroupID   uint      `json:"groupId"`
	SenderID  uuid.UUID `json:"senderId"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

func NewCreatedMessageView(m *models.Message) CreatedMessageView {
	return CreatedMessageView{
		ID:        m.ID,
		GroupID:   m.GroupID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		ImageURL:  m.ImageURL,
		CreatedAt: FormatTime(m.CreatedAt),
	}
}
