package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Registry владеет живыми соединениями. Подписки на комнаты хранит Directory.
type Registry struct {
	mu        sync.RWMutex
	conns     map[uuid.UUID]*Connection
	directory *Directory
}

func NewRegistry(directory *Directory) *Registry {
	return &Registry{
		conns:     make(map[uuid.UUID]*Connection),
		directory: directory,
	}
}

func (r *Registry) Register(c *Connection) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID()] = c
	return c.ID()
}

// Unregister снимает соединение с регистрации и убирает его из комнаты.
// Возвращает false, если соединение уже было снято.
func (r *Registry) Unregister(id uuid.UUID) bool {
	r.mu.Lock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	r.directory.Close(c)
	return true
}

func (r *Registry) CurrentRoom(id uuid.UUID) (RoomID, bool) {
	c, ok := r.Lookup(id)
	if !ok {
		return 0, false
	}
	return c.Room()
}

func (r *Registry) Lookup(id uuid.UUID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[id]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot возвращает копию списка соединений
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.conns)
}
