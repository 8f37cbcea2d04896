package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "join-gd-room"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON
}

// ──────────────────────────── Request DTOs ───────────────────────────────────

// CreateRoomRequest is the body for "create-gd-room" and
// "create-interview-room".
type CreateRoomRequest struct {
	UserName string `json:"userName"`
}

// JoinRoomRequest is the body for "join-gd-room" and "join-interview-room".
type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	UserName string `json:"userName"`
}

// LeaveRoomRequest carries the room code some clients send with
// "leave-gd-room". The room is resolved by connection, so the code is
// advisory only.
type LeaveRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type CodeChangeRequest struct {
	RoomCode string `json:"roomCode"`
	NewCode  string `json:"newCode"`
}

type CodeRunRequest struct {
	RoomCode string `json:"roomCode"`
	Output   string `json:"output"`
}

// SignalRequest is the body for "webrtc-signal". The signal itself
// (offer/answer/candidate) is opaque to the server.
type SignalRequest struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

// SignalNotification is the server→client mirror of SignalRequest.
type SignalNotification struct {
	From   string          `json:"from"`
	Signal json.RawMessage `json:"signal"`
}

type WhiteboardDataRequest struct {
	RoomCode string          `json:"roomCode"`
	Data     json.RawMessage `json:"data"`
}

type WhiteboardClearRequest struct {
	RoomCode string `json:"roomCode"`
}

// CallRequest is the body for "initiate-call", "accept-call" and
// "decline-call"; To is the peer's e-mail identity.
type CallRequest struct {
	To string `json:"to"`
}

// EndCallRequest is the body for "end-call".
type EndCallRequest struct {
	PeerEmail string `json:"peerEmail"`
}

// EmptyRequest covers events that carry no body ("get-all-users",
// "leave-interview-room").
type EmptyRequest struct{}
