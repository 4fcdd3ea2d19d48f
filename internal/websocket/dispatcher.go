//go:generate go run go.uber.org/mock/mockgen -source=dispatcher.go -destination=../mocks/mock_dispatcher.go -package=mocks
package websocket

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Dispatcher рассылает payload всем открытым соединениям комнаты.
// Ошибки доставки отдельным соединениям наружу не возвращаются.
type Dispatcher interface {
	Publish(roomID RoomID, payload any)
}

type Broadcaster struct {
	directory *Directory
	log       *slog.Logger
	metrics   *Metrics
}

func NewBroadcaster(directory *Directory, log *slog.Logger, metrics *Metrics) *Broadcaster {
	return &Broadcaster{directory: directory, log: log, metrics: metrics}
}

func (b *Broadcaster) Publish(roomID RoomID, payload any) {
	b.publish(roomID, payload, uuid.Nil)
}

// PublishExcept рассылает всем, кроме указанного соединения
func (b *Broadcaster) PublishExcept(roomID RoomID, payload any, except uuid.UUID) {
	b.publish(roomID, payload, except)
}

func (b *Broadcaster) publish(roomID RoomID, payload any, except uuid.UUID) int {
	members := b.directory.MembersOf(roomID)
	if len(members) == 0 {
		return 0
	}

	data, err := Encode(payload)
	if err != nil {
		b.log.Error("failed to encode broadcast payload", "room", roomID, "err", err)
		return 0
	}

	b.metrics.broadcast()

	delivered := 0
	for _, c := range members {
		if c.ID() == except {
			continue
		}

		if err := c.Send(data); err != nil {
			b.drop(roomID, c, err)
			continue
		}

		delivered++
		b.metrics.delivery("sent")
	}

	b.log.Debug("broadcast dispatched", "room", roomID, "members", len(members), "delivered", delivered)
	return delivered
}

// drop убирает из комнаты соединение, которому не удалось доставить кадр.
// При переполненной очереди соединение закрывается целиком.
func (b *Broadcaster) drop(roomID RoomID, c *Connection, err error) {
	b.directory.Leave(roomID, c)
	b.metrics.delivery("dropped")
	b.log.Warn("dropping connection from room", "room", roomID, "conn", c.ID(), "err", err)

	if errors.Is(err, ErrSendQueueFull) {
		c.Kick()
	}
}
