package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/dto"
	"github.com/thereayou/groupchat/internal/models"
	"github.com/thereayou/groupchat/internal/websocket"
)

type SendMessageInput struct {
	GroupID  uint
	SenderID uuid.UUID
	Content  string
	ImageURL *string
}

type HistoryQuery struct {
	GroupID  uint
	UserID   uuid.UUID
	Limit    int
	BeforeID *uint
}

// MessageService путь приема сообщения: проверка членства, сохранение,
// чтение с отправителем и рассылка в комнату группы
type MessageService struct {
	store      MessageStore
	members    MembershipValidator
	dispatcher websocket.Dispatcher
	log        *slog.Logger
}

func NewMessageService(store MessageStore, members MembershipValidator, dispatcher websocket.Dispatcher, log *slog.Logger) *MessageService {
	return &MessageService{
		store:      store,
		members:    members,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Send сохраняет сообщение и публикует его участникам комнаты.
// Не участник получает ErrForbidden, ничего не сохраняется и не рассылается.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if err := s.authorize(ctx, in.GroupID, in.SenderID); err != nil {
		return nil, err
	}

	message := &models.Message{
		GroupID:  in.GroupID,
		SenderID: in.SenderID,
		Content:  in.Content,
		ImageURL: in.ImageURL,
	}
	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: create message: %v", ErrPersistence, err)
	}

	full, err := s.store.GetMessageWithSender(ctx, message.ID)
	if err != nil {
		// сообщение уже сохранено, клиент получит его при следующей загрузке истории
		s.log.Error("failed to load message for broadcast", "message", message.ID, "group", in.GroupID, "err", err)
		return message, nil
	}

	s.dispatcher.Publish(websocket.RoomID(in.GroupID), websocket.OutboundFrame{
		Type: websocket.TypeMessage,
		Data: dto.NewMessageView(full),
	})

	return message, nil
}

// History возвращает историю группы, старые сообщения первыми
func (s *MessageService) History(ctx context.Context, q HistoryQuery) ([]models.Message, error) {
	if err := s.authorize(ctx, q.GroupID, q.UserID); err != nil {
		return nil, err
	}

	messages, err := s.store.GetGroupMessages(ctx, q.GroupID, q.Limit, q.BeforeID)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", ErrPersistence, err)
	}
	return messages, nil
}

// Authorize проверяет, что пользователь состоит в группе
func (s *MessageService) Authorize(ctx context.Context, groupID uint, userID uuid.UUID) error {
	return s.authorize(ctx, groupID, userID)
}

func (s *MessageService) authorize(ctx context.Context, groupID uint, userID uuid.UUID) error {
	ok, err := s.members.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("%w: check membership: %v", ErrPersistence, err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
