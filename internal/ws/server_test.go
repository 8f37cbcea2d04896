package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepconnect/internal/services/call"
	"prepconnect/internal/services/presence"
	"prepconnect/internal/services/rooms"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	presenceSvc := presence.NewPresenceService(hub)
	roomSvc := rooms.NewRoomService(hub)
	callSvc := call.NewCallService(hub, presenceSvc)
	wsSrv := NewWsServer(hub, 65536, presenceSvc, roomSvc, callSvc)

	engine := gin.New()
	engine.GET("/ws", wsSrv.Handle)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, body any) {
	t.Helper()
	env := map[string]any{"event": event}
	if body != nil {
		env["body"] = body
	}
	require.NoError(t, conn.WriteJSON(env))
}

// awaitEvent reads frames until one matches event, skipping unrelated
// notifications (roster broadcasts and the like).
func awaitEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Event == event {
			return env.Body
		}
	}
	t.Fatalf("no %q event arrived in time", event)
	return nil
}

func TestDiscussionRoomOverTheWire(t *testing.T) {
	srv, _ := newTestServer(t)
	connA := dial(t, srv)
	connB := dial(t, srv)

	send(t, connA, "create-gd-room", map[string]any{"userName": "Alice"})
	var code string
	require.NoError(t, json.Unmarshal(awaitEvent(t, connA, "gd-room-created"), &code))
	require.Len(t, code, 5)

	send(t, connB, "join-gd-room", map[string]any{"roomCode": code, "userName": "Bob"})

	var joined struct {
		RoomCode     string `json:"roomCode"`
		Participants []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(awaitEvent(t, connB, "joined-gd-room"), &joined))
	assert.Equal(t, code, joined.RoomCode)
	require.Len(t, joined.Participants, 1)
	assert.Equal(t, "Alice", joined.Participants[0].Name)
	aliceID := joined.Participants[0].ID

	var joining struct {
		NewParticipant struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"newParticipant"`
	}
	require.NoError(t, json.Unmarshal(awaitEvent(t, connA, "user-joining-gd"), &joining))
	assert.Equal(t, "Bob", joining.NewParticipant.Name)
	bobID := joining.NewParticipant.ID

	// B opens a peer connection toward A through the relay.
	send(t, connB, "webrtc-signal", map[string]any{
		"to":     aliceID,
		"signal": map[string]any{"type": "offer", "sdp": "v=0"},
	})
	var sig struct {
		From   string          `json:"from"`
		Signal json.RawMessage `json:"signal"`
	}
	require.NoError(t, json.Unmarshal(awaitEvent(t, connA, "webrtc-signal"), &sig))
	assert.Equal(t, bobID, sig.From)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0"}`, string(sig.Signal))

	// B vanishes; A hears about it exactly once.
	connB.Close()
	var left struct {
		SocketID string `json:"socketId"`
	}
	require.NoError(t, json.Unmarshal(awaitEvent(t, connA, "user-left-gd"), &left))
	assert.Equal(t, bobID, left.SocketID)
}

func TestJoinUnknownRoomOverTheWire(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, "join-gd-room", map[string]any{"roomCode": "ZZZZZ", "userName": "Bob"})

	var msg string
	require.NoError(t, json.Unmarshal(awaitEvent(t, conn, "error"), &msg))
	assert.Equal(t, "Room not found", msg)
}

func TestRegisterAndPresenceOverTheWire(t *testing.T) {
	srv, _ := newTestServer(t)
	connA := dial(t, srv)
	connB := dial(t, srv)

	send(t, connA, "register", map[string]any{
		"name": "Alice", "email": "alice@example.com", "picture": "a.png",
	})
	var online []string
	require.NoError(t, json.Unmarshal(awaitEvent(t, connA, "online-users"), &online))
	assert.Equal(t, []string{"alice@example.com"}, online)

	// An unregistered connection can pull the rosters on demand.
	send(t, connB, "get-all-users", nil)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(awaitEvent(t, connB, "all-users-update"), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0]["email"])

	// Disconnect drops the presence entry for everyone still connected.
	connA.Close()
	for {
		require.NoError(t, json.Unmarshal(awaitEvent(t, connB, "online-users"), &online))
		if len(online) == 0 {
			break
		}
	}
}

func TestMalformedFrameDoesNotKillConnection(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, conn, "no-such-event", map[string]any{"x": 1})

	// The connection still works.
	send(t, conn, "create-gd-room", map[string]any{"userName": "Alice"})
	var code string
	require.NoError(t, json.Unmarshal(awaitEvent(t, conn, "gd-room-created"), &code))
	assert.Len(t, code, 5)
}

func TestInterviewRoomOverTheWire(t *testing.T) {
	srv, _ := newTestServer(t)
	connA := dial(t, srv)
	connB := dial(t, srv)

	send(t, connA, "create-interview-room", map[string]any{"userName": "Alice"})
	var code string
	require.NoError(t, json.Unmarshal(awaitEvent(t, connA, "interview-room-created"), &code))

	send(t, connB, "join-interview-room", map[string]any{"roomCode": code, "userName": "Bob"})

	readyA := awaitEvent(t, connA, "interview-room-ready")
	readyB := awaitEvent(t, connB, "interview-room-ready")
	assert.JSONEq(t, string(readyA), string(readyB), "both sides get the identical snapshot")

	var ready struct {
		RoomCode    string `json:"roomCode"`
		Interviewer struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"interviewer"`
		Student struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"student"`
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(readyA, &ready))
	assert.Equal(t, code, ready.RoomCode)
	assert.Equal(t, "Alice", ready.Interviewer.Name)
	assert.Equal(t, "Bob", ready.Student.Name)
	assert.Contains(t, ready.Code, "Welcome to the interview room!")

	// Edits reach only the other side.
	send(t, connA, "code-change", map[string]any{"roomCode": code, "newCode": "x = 1"})
	var newCode string
	require.NoError(t, json.Unmarshal(awaitEvent(t, connB, "code-updated"), &newCode))
	assert.Equal(t, "x = 1", newCode)

	// Interviewer vanishes; the student hears partner-disconnected.
	connA.Close()
	awaitEvent(t, connB, "partner-disconnected")
}

func TestHubSendToUnknownConnection(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.Send("ghost", "webrtc-signal", nil))
	assert.Equal(t, 0, hub.Len())
}
