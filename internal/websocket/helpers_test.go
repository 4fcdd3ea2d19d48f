package websocket

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeTransport заглушка для соединений без pumps
type fakeTransport struct {
	closed atomic.Bool
}

func (f *fakeTransport) ReadMessage() (int, []byte, error) { return 0, nil, errors.New("not readable") }
func (f *fakeTransport) WriteMessage(int, []byte) error    { return nil }
func (f *fakeTransport) SetReadLimit(int64)                {}
func (f *fakeTransport) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeTransport) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeTransport) SetPongHandler(func(string) error) {}
func (f *fakeTransport) Close() error {
	f.closed.Store(true)
	return nil
}

func newTestConn(t *testing.T, sendBuffer int) (*Connection, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	return NewConnection(tr, uuid.New(), Options{SendBuffer: sendBuffer}), tr
}

// queued забирает все кадры из очереди соединения без блокировки
func queued(c *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

// counterValue значение счетчика с единственной меткой labelValue
func counterValue(t *testing.T, reg *prometheus.Registry, name, labelValue string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
