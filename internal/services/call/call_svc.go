package call

import (
	"prepconnect/internal/services/presence"
)

// Sender delivers handshake notifications; delivery to a vanished peer is a
// silent no-op.
type Sender interface {
	Send(connID string, event string, body any) bool
}

// Directory is the slice of the presence registry the arbiter needs.
type Directory interface {
	Lookup(email string) (connID string, ok bool)
	ByConn(connID string) (presence.User, bool)
}

// incomingCallBody carries the caller's display attributes so the callee can
// render the ring screen without a roster lookup.
type incomingCallBody struct {
	From       string `json:"from"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	UniqueName string `json:"uniqueName,omitempty"`
}

type peerBody struct {
	From string `json:"from"`
}

// ICallService brokers the invite/accept/decline handshake that precedes a
// peer-to-peer call. It keeps no record of active calls: once both sides have
// heard from each other, correctness of the call is entirely between the
// peers.
type ICallService interface {
	Initiate(callerConn, calleeEmail string)
	Accept(calleeConn, callerEmail string)
	Decline(calleeConn, callerEmail string)
	End(conn, peerEmail string)
}

type callService struct {
	sender Sender
	dir    Directory
}

func NewCallService(sender Sender, dir Directory) ICallService {
	return &callService{sender: sender, dir: dir}
}

// Initiate rings the callee. An unregistered caller or an absent callee drops
// the invitation outright; the caller's UI already shows "calling..." and
// times out on its own.
func (svc *callService) Initiate(callerConn, calleeEmail string) {
	caller, ok := svc.dir.ByConn(callerConn)
	if !ok {
		return
	}
	calleeConn, ok := svc.dir.Lookup(calleeEmail)
	if !ok {
		return
	}

	svc.sender.Send(calleeConn, "incoming-call", incomingCallBody{
		From:       caller.Email,
		Name:       caller.Name,
		Picture:    caller.Picture,
		UniqueName: caller.UniqueName,
	})
}

func (svc *callService) Accept(calleeConn, callerEmail string) {
	svc.notifyPeer(calleeConn, callerEmail, "call-accepted")
}

func (svc *callService) Decline(calleeConn, callerEmail string) {
	svc.notifyPeer(calleeConn, callerEmail, "call-declined")
}

func (svc *callService) End(conn, peerEmail string) {
	svc.notifyPeer(conn, peerEmail, "call-ended")
}

func (svc *callService) notifyPeer(fromConn, peerEmail, event string) {
	peerConn, ok := svc.dir.Lookup(peerEmail)
	if !ok {
		return
	}

	var from string
	if u, ok := svc.dir.ByConn(fromConn); ok {
		from = u.Email
	}
	svc.sender.Send(peerConn, event, peerBody{From: from})
}
