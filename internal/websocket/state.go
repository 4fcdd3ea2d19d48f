package websocket

import "fmt"

// RoomID комната совпадает с id группы в базе
type RoomID uint

// State состояние соединения: Unjoined, JoinedRoom или Closed.
// Других реализаций нет, интерфейс закрыт методом state().
type State interface {
	state()
	String() string
}

type Unjoined struct{}

type JoinedRoom struct {
	RoomID RoomID
}

// Closed терминальное состояние
type Closed struct{}

func (Unjoined) state()   {}
func (JoinedRoom) state() {}
func (Closed) state()     {}

func (Unjoined) String() string     { return "unjoined" }
func (s JoinedRoom) String() string { return fmt.Sprintf("joined(%d)", s.RoomID) }
func (Closed) String() string       { return "closed" }

// roomOf возвращает комнату, если состояние JoinedRoom
func roomOf(s State) (RoomID, bool) {
	if j, ok := s.(JoinedRoom); ok {
		return j.RoomID, true
	}
	return 0, false
}
