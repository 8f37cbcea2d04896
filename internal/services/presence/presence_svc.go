package presence

import (
	"sort"
	"sync"
)

// User mirrors the profile object the browser sends on "register". Email is
// the identity key; nothing about it is verified server-side.
type User struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
	UniqueName string `json:"uniqueName,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

// PrivateMessage is relayed verbatim; From/To are e-mail identities.
type PrivateMessage struct {
	From           string `json:"from"`
	To             string `json:"to"`
	Message        string `json:"message"`
	Timestamp      int64  `json:"timestamp"`
	FromUniqueName string `json:"fromUniqueName,omitempty"`
}

// Sender is the outbound half of the hub: fire-and-forget delivery to one
// connection or to every live connection.
type Sender interface {
	Send(connID string, event string, body any) bool
	Broadcast(event string, body any)
}

type IPresenceService interface {
	// Register upserts the entry for u.Email. A later registration for the
	// same identity silently supersedes the earlier connection mapping
	// (reconnect semantics); the superseded connection is left alone.
	Register(connID string, u User)
	// Unregister removes whichever entry maps to connID. Idempotent.
	Unregister(connID string)
	Lookup(email string) (connID string, ok bool)
	ByConn(connID string) (User, bool)
	// SendRoster pushes the current rosters to a single connection
	// ("get-all-users").
	SendRoster(connID string)
	// DeliverPrivateMessage forwards msg to its recipient and echoes it back
	// to the sender's connection; the client renders its own message from the
	// echo. An absent recipient is a silent drop.
	DeliverPrivateMessage(senderConn string, msg PrivateMessage)
	Count() int
}

type presenceService struct {
	sender Sender

	mu      sync.Mutex
	byEmail map[string]*entry
	byConn  map[string]string // connID -> email
}

type entry struct {
	user   User
	connID string
}

func NewPresenceService(sender Sender) IPresenceService {
	return &presenceService{
		sender:  sender,
		byEmail: make(map[string]*entry),
		byConn:  make(map[string]string),
	}
}

func (svc *presenceService) Register(connID string, u User) {
	if u.Email == "" {
		return
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if prev, ok := svc.byEmail[u.Email]; ok && prev.connID != connID {
		// Last register wins: the old connection keeps its socket but loses
		// its presence mapping.
		delete(svc.byConn, prev.connID)
	}
	// A connection re-registering under a new identity drops its old one.
	if prevEmail, ok := svc.byConn[connID]; ok && prevEmail != u.Email {
		delete(svc.byEmail, prevEmail)
	}

	svc.byEmail[u.Email] = &entry{user: u, connID: connID}
	svc.byConn[connID] = u.Email

	svc.broadcastRosterLocked()
}

func (svc *presenceService) Unregister(connID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	email, ok := svc.byConn[connID]
	if !ok {
		return
	}
	delete(svc.byConn, connID)
	if e, ok := svc.byEmail[email]; ok && e.connID == connID {
		delete(svc.byEmail, email)
	}

	svc.broadcastRosterLocked()
}

func (svc *presenceService) Lookup(email string) (string, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	e, ok := svc.byEmail[email]
	if !ok {
		return "", false
	}
	return e.connID, true
}

func (svc *presenceService) ByConn(connID string) (User, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	email, ok := svc.byConn[connID]
	if !ok {
		return User{}, false
	}
	e, ok := svc.byEmail[email]
	if !ok {
		return User{}, false
	}
	return e.user, true
}

func (svc *presenceService) SendRoster(connID string) {
	svc.mu.Lock()
	emails, users := svc.rostersLocked()
	svc.mu.Unlock()

	svc.sender.Send(connID, "all-users-update", users)
	svc.sender.Send(connID, "online-users", emails)
}

func (svc *presenceService) DeliverPrivateMessage(senderConn string, msg PrivateMessage) {
	svc.mu.Lock()
	recipient, ok := svc.byEmail[msg.To]
	svc.mu.Unlock()

	if ok {
		svc.sender.Send(recipient.connID, "private-message", msg)
	}
	// The sender's UI appends its own message from this echo.
	if !ok || recipient.connID != senderConn {
		svc.sender.Send(senderConn, "private-message", msg)
	}
}

func (svc *presenceService) Count() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.byEmail)
}

// broadcastRosterLocked pushes both roster views to every live connection.
// Kept under the registry lock so the broadcast order matches mutation order.
func (svc *presenceService) broadcastRosterLocked() {
	emails, users := svc.rostersLocked()
	svc.sender.Broadcast("online-users", emails)
	svc.sender.Broadcast("all-users-update", users)
}

func (svc *presenceService) rostersLocked() ([]string, []User) {
	emails := make([]string, 0, len(svc.byEmail))
	users := make([]User, 0, len(svc.byEmail))
	for email := range svc.byEmail {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	for _, email := range emails {
		users = append(users, svc.byEmail[email].user)
	}
	return emails, users
}
