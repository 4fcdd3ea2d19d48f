//go:generate go run go.uber.org/mock/mockgen -source=database.go -destination=../mocks/mock_store.go -package=mocks
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

// MessageStore сохранение и чтение сообщений
type MessageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessageWithSender(ctx context.Context, id uint) (*models.Message, error)
	GetGroupMessages(ctx context.Context, groupID uint, limit int, beforeID *uint) ([]models.Message, error)
}

// MembershipValidator проверяет членство пользователя в группе
type MembershipValidator interface {
	IsGroupMember(ctx context.Context, groupID uint, userID uuid.UUID) (bool, error)
}

type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastSeen(ctx context.Context, id uuid.UUID) error
}
