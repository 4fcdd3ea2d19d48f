package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FrameType определяет типы кадров протокола
type FrameType string

const (
	// Кадры клиента
	TypeJoinRoom FrameType = "joinRoom"
	TypeJoin     FrameType = "join" // старое имя joinRoom
	TypeTyping   FrameType = "typing"

	// Кадры сервера
	TypeMessage FrameType = "message"
	TypeError   FrameType = "error"
)

var validate = validator.New()

// envelope общая оболочка входящего кадра. Поля кадра могут лежать
// на верхнем уровне или внутри payload.
type envelope struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRoomFrame struct {
	GroupID RoomID `json:"groupId" validate:"required"`
}

type TypingFrame struct {
	GroupID  RoomID `json:"groupId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

// OutboundFrame кадр сервер -> клиент
type OutboundFrame struct {
	Type FrameType `json:"type"`
	Data any       `json:"data"`
}

type TypingEvent struct {
	GroupID  RoomID `json:"groupId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorEvent struct {
	Error string `json:"error"`
}

// ParseFrame разбирает и валидирует входящий кадр. Для неизвестного типа
// возвращает ErrUnknownFrame, для битого кадра ErrInvalidFrame.
func ParseFrame(raw []byte) (FrameType, any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	body := raw
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		body = env.Payload
	}

	switch env.Type {
	case TypeJoinRoom, TypeJoin:
		var f JoinRoomFrame
		if err := decodeBody(body, &f); err != nil {
			return TypeJoinRoom, nil, err
		}
		return TypeJoinRoom, f, nil

	case TypeTyping:
		var f TypingFrame
		if err := decodeBody(body, &f); err != nil {
			return TypeTyping, nil, err
		}
		return TypeTyping, f, nil

	default:
		return env.Type, nil, fmt.Errorf("%w: %q", ErrUnknownFrame, env.Type)
	}
}

func decodeBody(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return nil
}

// Encode сериализует payload один раз для всей рассылки.
// Уже готовые байты передаются как есть.
func Encode(payload any) ([]byte, error) {
	if b, ok := payload.([]byte); ok {
		return b, nil
	}
	return json.Marshal(payload)
}
