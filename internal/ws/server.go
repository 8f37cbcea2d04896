package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"prepconnect/internal/services/call"
	"prepconnect/internal/services/presence"
	"prepconnect/internal/services/rooms"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 12 * time.Second
	pingPeriod = 3 * time.Second // must be < pongWait
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin is allowed; the server holds no sensitive state.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsServer struct {
	hub         *Hub
	router      *Router
	readLimit   int64
	presenceSvc presence.IPresenceService
	roomSvc     rooms.IRoomService
	callSvc     call.ICallService
}

func NewWsServer(
	h *Hub,
	readLimit int64,
	presenceSvc presence.IPresenceService,
	roomSvc rooms.IRoomService,
	callSvc call.ICallService,
) *WsServer {
	srv := &WsServer{
		hub:         h,
		router:      NewRouter(),
		readLimit:   readLimit,
		presenceSvc: presenceSvc,
		roomSvc:     roomSvc,
		callSvc:     callSvc,
	}
	srv.registerHandlers() // ← all WS events configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(s.readLimit)

	// ─────────────────── Client connected ─────────────────────
	wsConn := &clientConn{id: uuid.NewString(), rawConn: rawConn}
	s.hub.add(wsConn)
	zap.L().Debug("ws.connected", zap.String("conn_id", wsConn.id))

	go s.reader(wsConn)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 presence ------------------------------------------------------------
	Register(s.router, "register",
		func(ctx context.Context, cc *ConnContext, req presence.User) error {
			s.presenceSvc.Register(cc.ConnID, req)
			return nil
		})
	Register(s.router, "get-all-users",
		func(ctx context.Context, cc *ConnContext, _ EmptyRequest) error {
			s.presenceSvc.SendRoster(cc.ConnID)
			return nil
		})
	Register(s.router, "private-message",
		func(ctx context.Context, cc *ConnContext, req presence.PrivateMessage) error {
			s.presenceSvc.DeliverPrivateMessage(cc.ConnID, req)
			return nil
		})

	// 🔹 discussion rooms ----------------------------------------------------
	Register(s.router, "create-gd-room",
		func(ctx context.Context, cc *ConnContext, req CreateRoomRequest) error {
			s.roomSvc.CreateDiscussion(cc.ConnID, req.UserName)
			return nil
		})
	Register(s.router, "join-gd-room",
		func(ctx context.Context, cc *ConnContext, req JoinRoomRequest) error {
			return s.roomSvc.JoinDiscussion(req.RoomCode, cc.ConnID, req.UserName)
		})
	Register(s.router, "leave-gd-room",
		func(ctx context.Context, cc *ConnContext, _ LeaveRoomRequest) error {
			s.roomSvc.LeaveDiscussion(cc.ConnID)
			return nil
		})

	// 🔹 interview rooms -----------------------------------------------------
	Register(s.router, "create-interview-room",
		func(ctx context.Context, cc *ConnContext, req CreateRoomRequest) error {
			s.roomSvc.CreateInterview(cc.ConnID, req.UserName)
			return nil
		})
	Register(s.router, "join-interview-room",
		func(ctx context.Context, cc *ConnContext, req JoinRoomRequest) error {
			return s.roomSvc.JoinInterview(req.RoomCode, cc.ConnID, req.UserName)
		})
	Register(s.router, "code-change",
		func(ctx context.Context, cc *ConnContext, req CodeChangeRequest) error {
			s.roomSvc.ApplyCodeChange(cc.ConnID, req.NewCode)
			return nil
		})
	Register(s.router, "code-run",
		func(ctx context.Context, cc *ConnContext, req CodeRunRequest) error {
			s.roomSvc.ApplyCodeRun(cc.ConnID, req.Output)
			return nil
		})
	Register(s.router, "leave-interview-room",
		func(ctx context.Context, cc *ConnContext, _ EmptyRequest) error {
			s.roomSvc.LeaveInterview(cc.ConnID)
			return nil
		})

	// 🔹 signaling & whiteboard ----------------------------------------------
	Register(s.router, "webrtc-signal",
		func(ctx context.Context, cc *ConnContext, req SignalRequest) error {
			s.hub.Send(req.To, "webrtc-signal", SignalNotification{
				From:   cc.ConnID,
				Signal: req.Signal,
			})
			return nil
		})
	Register(s.router, "whiteboard-data",
		func(ctx context.Context, cc *ConnContext, req WhiteboardDataRequest) error {
			s.roomSvc.RelayToDiscussionPeers(cc.ConnID, "whiteboard-data", req.Data)
			return nil
		})
	Register(s.router, "whiteboard-clear",
		func(ctx context.Context, cc *ConnContext, _ WhiteboardClearRequest) error {
			s.roomSvc.RelayToDiscussionPeers(cc.ConnID, "whiteboard-clear", nil)
			return nil
		})

	// 🔹 calls ---------------------------------------------------------------
	Register(s.router, "initiate-call",
		func(ctx context.Context, cc *ConnContext, req CallRequest) error {
			s.callSvc.Initiate(cc.ConnID, req.To)
			return nil
		})
	Register(s.router, "accept-call",
		func(ctx context.Context, cc *ConnContext, req CallRequest) error {
			s.callSvc.Accept(cc.ConnID, req.To)
			return nil
		})
	Register(s.router, "decline-call",
		func(ctx context.Context, cc *ConnContext, req CallRequest) error {
			s.callSvc.Decline(cc.ConnID, req.To)
			return nil
		})
	Register(s.router, "end-call",
		func(ctx context.Context, cc *ConnContext, req EndCallRequest) error {
			s.callSvc.End(cc.ConnID, req.PeerEmail)
			return nil
		})
}

func (s *WsServer) reader(conn *clientConn) {
	defer s.teardown(conn)

	conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{ConnID: conn.id}

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			zap.L().Debug("ws.malformed_frame",
				zap.String("conn_id", conn.id), zap.Error(err))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		err = s.router.dispatch(ctx, cc, env)
		cancel()
		if err == nil {
			continue
		}

		// ---- NotFound / Full -> {"event":"error","body":"..."} ------
		if userFacing(err) {
			_ = conn.writeEnvelope("error", err.Error())
			continue
		}
		// Everything else (unknown event, malformed body) is dropped; the
		// connection is not penalized.
		zap.L().Debug("ws.dropped",
			zap.String("conn_id", conn.id), zap.String("event", env.Event), zap.Error(err))
	}
}

// teardown is the lifecycle supervisor for one connection: every room,
// presence entry and pending call the connection participated in is cleaned
// up or notified exactly once, in this order.
func (s *WsServer) teardown(conn *clientConn) {
	s.roomSvc.LeaveDiscussion(conn.id)
	s.roomSvc.LeaveInterview(conn.id)
	s.presenceSvc.Unregister(conn.id)
	s.hub.remove(conn.id)
	zap.L().Debug("ws.disconnected", zap.String("conn_id", conn.id))
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			conn.rawConn.Close()
			return
		}
	}
}

// userFacing reports whether err is one of the two failure kinds surfaced to
// the requester as a human-readable "error" event.
func userFacing(err error) bool {
	return errors.Is(err, rooms.ErrRoomNotFound) ||
		errors.Is(err, rooms.ErrInterviewRoomNotFound) ||
		errors.Is(err, rooms.ErrInterviewRoomFull)
}
