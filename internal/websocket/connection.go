package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10
)

// Transport двунаправленный канал с клиентом. *websocket.Conn
// из gorilla реализует его целиком.
type Transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Connection живое соединение клиента. Состояние меняет только Directory,
// под своей блокировкой.
type Connection struct {
	id        uuid.UUID
	userID    uuid.UUID
	transport Transport
	send      chan []byte
	limiter   *rate.Limiter

	mu    sync.Mutex
	state State

	kickOnce sync.Once
}

func NewConnection(transport Transport, userID uuid.UUID, opts Options) *Connection {
	opts = opts.sanitize()
	return &Connection{
		id:        uuid.New(),
		userID:    userID,
		transport: transport,
		send:      make(chan []byte, opts.SendBuffer),
		limiter:   rate.NewLimiter(rate.Limit(opts.FrameRate), opts.FrameBurst),
		state:     Unjoined{},
	}
}

func (c *Connection) ID() uuid.UUID {
	return c.id
}

func (c *Connection) UserID() uuid.UUID {
	return c.userID
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Room возвращает текущую комнату соединения
func (c *Connection) Room() (RoomID, bool) {
	return roomOf(c.State())
}

// Send ставит кадр в очередь записи без блокировки
func (c *Connection) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, closed := c.state.(Closed); closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// SendFrame сериализует и отправляет кадр только этому соединению
func (c *Connection) SendFrame(frameType FrameType, data any) error {
	msg, err := Encode(OutboundFrame{Type: frameType, Data: data})
	if err != nil {
		return err
	}
	return c.Send(msg)
}

func (c *Connection) SendError(errorMsg string) {
	_ = c.SendFrame(TypeError, ErrorEvent{Error: errorMsg})
}

// Kick закрывает транспорт. Read pump после этого завершится
// и снимет соединение с регистрации.
func (c *Connection) Kick() {
	c.kickOnce.Do(func() {
		if c.transport != nil {
			_ = c.transport.Close()
		}
	})
}

// allowFrame расходует токен из лимита кадров соединения
func (c *Connection) allowFrame() bool {
	return c.limiter.Allow()
}

// setState вызывается только из Directory
func (c *Connection) setState(s State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, closed := c.state.(Closed); closed {
		return ErrConnectionClosed
	}

	c.state = s
	if _, closing := s.(Closed); closing {
		close(c.send)
	}
	return nil
}

// readPump читает кадры клиента
func (c *Connection) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.Kick()
	}()

	c.transport.SetReadLimit(h.opts.MaxFrameBytes)
	_ = c.transport.SetReadDeadline(time.Now().Add(pongWait))
	c.transport.SetPongHandler(func(string) error {
		return c.transport.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.transport.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "conn", c.id, "err", err)
			}
			return
		}

		h.handleFrame(c, raw)
	}
}

// writePump отправляет кадры клиенту
func (c *Connection) writePump(log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Kick()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.transport.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Registry закрыл очередь
				_ = c.transport.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.transport.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug("websocket write failed", "conn", c.id, "err", err)
				return
			}

		case <-ticker.C:
			_ = c.transport.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.transport.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
