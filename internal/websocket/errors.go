package websocket

import "errors"

var (
	ErrConnectionClosed = errors.New("connection is closed")
	ErrSendQueueFull    = errors.New("connection send queue is full")
	ErrInvalidFrame     = errors.New("invalid frame format")
	ErrUnknownFrame     = errors.New("unknown frame type")
	ErrJoinForbidden    = errors.New("not allowed to join room")
	ErrNotInRoom        = errors.New("connection is not in room")
)
