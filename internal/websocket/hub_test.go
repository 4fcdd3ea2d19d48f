package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/groupchat/pkg/logger"
)

const waitFor = 2 * time.Second

type denyAll struct{}

func (denyAll) CanJoin(context.Context, uuid.UUID, RoomID) (bool, error) { return false, nil }

type inboundFrame struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestHub(t *testing.T, opts ...HubOption) (*Hub, *httptest.Server) {
	t.Helper()
	return newTestHubWithOptions(t, Options{}, opts...)
}

func newTestHubWithOptions(t *testing.T, hubOpts Options, opts ...HubOption) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(logger.Discard(), hubOpts, opts...)
	upgrader := gws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := uuid.MustParse(r.URL.Query().Get("user"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, _ = hub.Serve(conn, userID)
	}))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()
		_ = hub.Shutdown(ctx)
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID.String()
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func joinRoom(t *testing.T, conn *gws.Conn, room RoomID) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "joinRoom", "groupId": room}))
}

func readFrame(t *testing.T, conn *gws.Conn) inboundFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	var f inboundFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

// expectSilence проверяет, что кадров нет. После таймаута соединение
// gorilla непригодно для чтения, поэтому вызывается последним.
func expectSilence(t *testing.T, conn *gws.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, msg, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", msg)
}

func TestHub_BroadcastReachesOnlyJoinedRoom(t *testing.T) {
	// Given: A and B join 7, C joins 9
	hub, srv := newTestHub(t)
	a := dial(t, srv, uuid.New())
	b := dial(t, srv, uuid.New())
	c := dial(t, srv, uuid.New())
	joinRoom(t, a, 7)
	joinRoom(t, b, 7)
	joinRoom(t, c, 9)
	require.Eventually(t, func() bool {
		return hub.OnlineCount(7) == 2 && hub.OnlineCount(9) == 1
	}, waitFor, 10*time.Millisecond)

	// When
	hub.Dispatcher().Publish(7, OutboundFrame{Type: TypeMessage, Data: map[string]string{"content": "hi"}})

	// Then
	for _, conn := range []*gws.Conn{a, b} {
		f := readFrame(t, conn)
		require.Equal(t, TypeMessage, f.Type)
		require.JSONEq(t, `{"content":"hi"}`, string(f.Data))
	}
	expectSilence(t, c)
}

func TestHub_RejoinMovesConnection(t *testing.T) {
	// Given: A joins 7 then 8
	hub, srv := newTestHub(t)
	a := dial(t, srv, uuid.New())
	joinRoom(t, a, 7)
	require.NoError(t, a.WriteJSON(map[string]any{"type": "join", "payload": map[string]any{"groupId": 8}}))
	require.Eventually(t, func() bool {
		return hub.OnlineCount(7) == 0 && hub.OnlineCount(8) == 1
	}, waitFor, 10*time.Millisecond)

	// When
	hub.Dispatcher().Publish(7, OutboundFrame{Type: TypeMessage, Data: "to seven"})

	// Then
	expectSilence(t, a)
}

func TestHub_ClosedPeerDoesNotAffectOthers(t *testing.T) {
	// Given: two join, one closes
	hub, srv := newTestHub(t)
	a := dial(t, srv, uuid.New())
	b := dial(t, srv, uuid.New())
	joinRoom(t, a, 7)
	joinRoom(t, b, 7)
	require.Eventually(t, func() bool { return hub.OnlineCount(7) == 2 }, waitFor, 10*time.Millisecond)

	// When
	require.NoError(t, a.Close())
	require.Eventually(t, func() bool {
		return hub.OnlineCount(7) == 1 && hub.Registry().Len() == 1
	}, waitFor, 10*time.Millisecond)
	hub.Dispatcher().Publish(7, OutboundFrame{Type: TypeMessage, Data: "still here"})

	// Then
	f := readFrame(t, b)
	require.Equal(t, TypeMessage, f.Type)
}

func TestHub_IgnoresBadFramesAndKeepsConnection(t *testing.T) {
	// Given
	hub, srv := newTestHub(t)
	a := dial(t, srv, uuid.New())

	// When
	require.NoError(t, a.WriteMessage(gws.TextMessage, []byte("not json")))
	require.NoError(t, a.WriteJSON(map[string]any{"type": "dance"}))
	require.NoError(t, a.WriteJSON(map[string]any{"type": "joinRoom", "groupId": "seven"}))
	joinRoom(t, a, 7)

	// Then
	require.Eventually(t, func() bool { return hub.OnlineCount(7) == 1 }, waitFor, 10*time.Millisecond)
}

func TestHub_TypingRelayedToPeersOnly(t *testing.T) {
	// Given
	hub, srv := newTestHub(t)
	aliceID := uuid.New()
	alice := dial(t, srv, aliceID)
	bob := dial(t, srv, uuid.New())
	joinRoom(t, alice, 7)
	joinRoom(t, bob, 7)
	require.Eventually(t, func() bool { return hub.OnlineCount(7) == 2 }, waitFor, 10*time.Millisecond)

	// When
	require.NoError(t, alice.WriteJSON(map[string]any{"type": "typing", "groupId": 7, "isTyping": true}))

	// Then
	f := readFrame(t, bob)
	require.Equal(t, TypeTyping, f.Type)
	var ev TypingEvent
	require.NoError(t, json.Unmarshal(f.Data, &ev))
	require.Equal(t, TypingEvent{GroupID: 7, UserID: aliceID.String(), IsTyping: true}, ev)
	expectSilence(t, alice)
}

func TestHub_AuthorizerRejectsJoin(t *testing.T) {
	// Given
	hub, srv := newTestHub(t, WithAuthorizer(denyAll{}))
	a := dial(t, srv, uuid.New())

	// When
	joinRoom(t, a, 7)

	// Then
	f := readFrame(t, a)
	require.Equal(t, TypeError, f.Type)
	require.Zero(t, hub.OnlineCount(7))
}

func TestHub_MetricsTrackConnections(t *testing.T) {
	// Given
	reg := prometheus.NewRegistry()
	hub, srv := newTestHub(t, WithMetrics(reg))
	a := dial(t, srv, uuid.New())
	joinRoom(t, a, 7)
	require.Eventually(t, func() bool { return hub.OnlineCount(7) == 1 }, waitFor, 10*time.Millisecond)

	// Then
	require.Equal(t, 1.0, counterValue(t, reg, "groupchat_ws_frames_received_total", string(TypeJoinRoom)))
}

// tightLimit почти не пополняет бакет: за время теста доступны только FrameBurst кадров
var tightLimit = Options{FrameRate: 0.01, FrameBurst: 2}

func sendTyping(t *testing.T, conn *gws.Conn, room RoomID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, conn.WriteJSON(map[string]any{"type": "typing", "groupId": room, "isTyping": true}))
	}
}

func TestHub_RateLimitDropsExcessFrames(t *testing.T) {
	// Given
	reg := prometheus.NewRegistry()
	hub, srv := newTestHubWithOptions(t, tightLimit, WithMetrics(reg))
	alice := dial(t, srv, uuid.New())
	bob := dial(t, srv, uuid.New())
	joinRoom(t, alice, 7)
	joinRoom(t, bob, 7)
	require.Eventually(t, func() bool { return hub.OnlineCount(7) == 2 }, waitFor, 10*time.Millisecond)

	// When
	sendTyping(t, alice, 7, 5)

	// Then
	require.Equal(t, TypeTyping, readFrame(t, bob).Type)
	require.Equal(t, TypeTyping, readFrame(t, bob).Type)
	require.Eventually(t, func() bool {
		return counterValue(t, reg, "groupchat_ws_frames_rejected_total", "rate_limited") == 3
	}, waitFor, 10*time.Millisecond)
	require.Equal(t, 2.0, counterValue(t, reg, "groupchat_ws_frames_received_total", string(TypeTyping)))
	expectSilence(t, bob)
}

func TestHub_JoinFramesBypassRateLimit(t *testing.T) {
	// Given
	reg := prometheus.NewRegistry()
	hub, srv := newTestHubWithOptions(t, tightLimit, WithMetrics(reg))
	a := dial(t, srv, uuid.New())
	sendTyping(t, a, 1, 5)

	// When
	for room := RoomID(1); room <= 12; room++ {
		joinRoom(t, a, room)
	}

	// Then
	require.Eventually(t, func() bool { return hub.OnlineCount(12) == 1 }, waitFor, 10*time.Millisecond)
	for room := RoomID(1); room < 12; room++ {
		require.Zero(t, hub.OnlineCount(room), "room %d", room)
	}
	require.Equal(t, 12.0, counterValue(t, reg, "groupchat_ws_frames_received_total", string(TypeJoinRoom)))
	require.Equal(t, 3.0, counterValue(t, reg, "groupchat_ws_frames_rejected_total", "rate_limited"))
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	// Given
	hub, srv := newTestHub(t)
	a := dial(t, srv, uuid.New())
	joinRoom(t, a, 7)
	require.Eventually(t, func() bool { return hub.OnlineCount(7) == 1 }, waitFor, 10*time.Millisecond)

	// When
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, hub.Shutdown(ctx))

	// Then
	require.NoError(t, a.SetReadDeadline(time.Now().Add(waitFor)))
	_, _, err := a.ReadMessage()
	require.Error(t, err)
	require.Zero(t, hub.Registry().Len())
	require.Zero(t, hub.OnlineCount(7))

	_, err = hub.Serve(&fakeTransport{}, uuid.New())
	require.ErrorIs(t, err, ErrHubClosed)
}
