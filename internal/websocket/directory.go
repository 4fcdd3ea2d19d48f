package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Directory соответствие комната -> подписанные соединения.
// Соединение состоит не более чем в одной комнате; пустые комнаты удаляются.
type Directory struct {
	mu    sync.RWMutex
	rooms map[RoomID]map[uuid.UUID]*Connection
}

func NewDirectory() *Directory {
	return &Directory{
		rooms: make(map[RoomID]map[uuid.UUID]*Connection),
	}
}

// Join подписывает соединение на комнату, предварительно убирая его
// из предыдущей. Повторный join в ту же комнату ничего не меняет.
func (d *Directory) Join(roomID RoomID, c *Connection) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch s := c.State().(type) {
	case Closed:
		return ErrConnectionClosed
	case JoinedRoom:
		if s.RoomID == roomID {
			return nil
		}
		d.removeLocked(s.RoomID, c)
	}

	members, ok := d.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]*Connection)
		d.rooms[roomID] = members
	}
	members[c.ID()] = c

	return c.setState(JoinedRoom{RoomID: roomID})
}

// Leave убирает соединение из комнаты, если оно там есть
func (d *Directory) Leave(roomID RoomID, c *Connection) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.removeLocked(roomID, c) {
		return false
	}

	if current, ok := c.Room(); ok && current == roomID {
		_ = c.setState(Unjoined{})
	}
	return true
}

// Close убирает соединение из текущей комнаты и переводит его в Closed
// одной критической секцией, так что следующая рассылка его уже не увидит.
func (d *Directory) Close(c *Connection) (RoomID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := c.State()
	if _, closed := s.(Closed); closed {
		return 0, false
	}

	roomID, joined := roomOf(s)
	if joined {
		d.removeLocked(roomID, c)
	}
	_ = c.setState(Closed{})

	return roomID, joined
}

// MembersOf возвращает снимок участников комнаты
func (d *Directory) MembersOf(roomID RoomID) []*Connection {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return lo.Values(d.rooms[roomID])
}

func (d *Directory) Count(roomID RoomID) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms[roomID])
}

// RoomCount количество непустых комнат
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) removeLocked(roomID RoomID, c *Connection) bool {
	members, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := members[c.ID()]; !ok {
		return false
	}

	delete(members, c.ID())
	if len(members) == 0 {
		delete(d.rooms, roomID)
	}
	return true
}
