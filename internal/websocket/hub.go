package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrHubClosed возвращается Serve после начала остановки
var ErrHubClosed = errors.New("hub is shutting down")

const authorizeTimeout = 5 * time.Second

// Options настройки соединений
type Options struct {
	SendBuffer    int
	MaxFrameBytes int64
	FrameRate     float64 // кадров в секунду
	FrameBurst    int
}

func DefaultOptions() Options {
	return Options{
		SendBuffer:    256,
		MaxFrameBytes: 64 * 1024,
		FrameRate:     5,
		FrameBurst:    10,
	}
}

func (o Options) sanitize() Options {
	def := DefaultOptions()
	if o.SendBuffer <= 0 {
		o.SendBuffer = def.SendBuffer
	}
	if o.MaxFrameBytes <= 0 {
		o.MaxFrameBytes = def.MaxFrameBytes
	}
	if o.FrameRate <= 0 {
		o.FrameRate = def.FrameRate
	}
	if o.FrameBurst <= 0 {
		o.FrameBurst = def.FrameBurst
	}
	return o
}

// RoomAuthorizer решает, может ли пользователь подписаться на комнату.
// Без него join разрешен любому подключенному клиенту.
type RoomAuthorizer interface {
	CanJoin(ctx context.Context, userID uuid.UUID, roomID RoomID) (bool, error)
}

type HubOption func(*Hub)

func WithAuthorizer(a RoomAuthorizer) HubOption {
	return func(h *Hub) {
		h.authorizer = a
	}
}

func WithMetrics(reg prometheus.Registerer) HubOption {
	return func(h *Hub) {
		h.metrics = NewMetrics(reg, h.directory.RoomCount)
	}
}

// Hub связывает Registry, Directory и Broadcaster и обслуживает
// протокол join для каждого соединения.
type Hub struct {
	log         *slog.Logger
	opts        Options
	registry    *Registry
	directory   *Directory
	broadcaster *Broadcaster
	authorizer  RoomAuthorizer
	metrics     *Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewHub создает новый Hub
func NewHub(log *slog.Logger, opts Options, options ...HubOption) *Hub {
	directory := NewDirectory()
	h := &Hub{
		log:       log,
		opts:      opts.sanitize(),
		directory: directory,
		registry:  NewRegistry(directory),
	}

	for _, opt := range options {
		opt(h)
	}

	h.broadcaster = NewBroadcaster(directory, log, h.metrics)
	return h
}

func (h *Hub) Dispatcher() Dispatcher {
	return h.broadcaster
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) Directory() *Directory {
	return h.directory
}

// OnlineCount количество соединений, подписанных на комнату
func (h *Hub) OnlineCount(roomID RoomID) int {
	return h.directory.Count(roomID)
}

// Serve регистрирует соединение и запускает его read/write pumps
func (h *Hub) Serve(transport Transport, userID uuid.UUID) (*Connection, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = transport.Close()
		return nil, ErrHubClosed
	}

	c := NewConnection(transport, userID, h.opts)
	h.registry.Register(c)
	h.wg.Add(2)
	h.mu.Unlock()

	h.metrics.connOpened()
	h.log.Debug("connection registered", "conn", c.ID(), "user", userID)

	go func() {
		defer h.wg.Done()
		c.writePump(h.log)
	}()
	go func() {
		defer h.wg.Done()
		c.readPump(h)
	}()

	return c, nil
}

// Join подписывает соединение на комнату, уходя из предыдущей
func (h *Hub) Join(c *Connection, roomID RoomID) error {
	if h.authorizer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), authorizeTimeout)
		defer cancel()

		ok, err := h.authorizer.CanJoin(ctx, c.UserID(), roomID)
		if err != nil {
			return fmt.Errorf("authorize join: %w", err)
		}
		if !ok {
			return ErrJoinForbidden
		}
	}

	if err := h.directory.Join(roomID, c); err != nil {
		return err
	}

	h.log.Debug("connection joined room", "conn", c.ID(), "user", c.UserID(), "room", roomID)
	return nil
}

func (h *Hub) unregister(c *Connection) {
	if !h.registry.Unregister(c.ID()) {
		return
	}

	h.metrics.connClosed()
	h.log.Debug("connection unregistered", "conn", c.ID(), "user", c.UserID())
}

func (h *Hub) handleFrame(c *Connection, raw []byte) {
	frameType, frame, err := ParseFrame(raw)

	// Валидный joinRoom лимитом не ограничен: соединение всегда должно
	// оказаться в комнате последнего join
	if (err != nil || frameType != TypeJoinRoom) && !c.allowFrame() {
		h.metrics.frameRejected("rate_limited")
		h.log.Debug("frame rate limit exceeded, dropping frame", "conn", c.ID(), "type", frameType)
		return
	}

	if err != nil {
		if errors.Is(err, ErrUnknownFrame) {
			h.metrics.frameRejected("unknown")
			h.log.Debug("ignoring unknown frame", "conn", c.ID(), "type", frameType)
			return
		}

		h.metrics.frameRejected("invalid")
		h.log.Warn("ignoring malformed frame", "conn", c.ID(), "err", err)
		return
	}

	h.metrics.frameReceived(frameType)

	switch f := frame.(type) {
	case JoinRoomFrame:
		if err := h.Join(c, f.GroupID); err != nil {
			h.log.Warn("join room failed", "conn", c.ID(), "room", f.GroupID, "err", err)
			if errors.Is(err, ErrJoinForbidden) {
				c.SendError("you are not a member of this group")
			}
		}

	case TypingFrame:
		if err := h.relayTyping(c, f); err != nil {
			h.metrics.frameRejected("not_in_room")
			h.log.Debug("typing frame ignored", "conn", c.ID(), "room", f.GroupID, "err", err)
		}
	}
}

// relayTyping пересылает индикатор набора остальным участникам комнаты.
// Ничего не сохраняется.
func (h *Hub) relayTyping(c *Connection, f TypingFrame) error {
	if room, ok := c.Room(); !ok || room != f.GroupID {
		return ErrNotInRoom
	}

	h.broadcaster.PublishExcept(f.GroupID, OutboundFrame{
		Type: TypeTyping,
		Data: TypingEvent{
			GroupID:  f.GroupID,
			UserID:   c.UserID().String(),
			IsTyping: f.IsTyping,
		},
	}, c.ID())
	return nil
}

// Shutdown закрывает все соединения и ждет завершения их pumps
// или отмены ctx
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	conns := h.registry.Snapshot()
	h.log.Info("hub shutting down", "connections", len(conns))
	for _, c := range conns {
		c.Kick()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("hub shutdown completed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
