package rooms

import (
	"errors"
	"sync"
)

// Participant is the membership unit for both room kinds; ID is the
// connection id the browser uses to address WebRTC signals.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	// Error strings are user-facing; the client shows them verbatim.
	ErrRoomNotFound          = errors.New("Room not found")
	ErrInterviewRoomNotFound = errors.New("Interview room not found.")
	ErrInterviewRoomFull     = errors.New("Interview room is already full.")
)

// Sender is the outbound half of the hub. Every structural mutation fans its
// notifications out through here, on the same code path, under the room lock.
type Sender interface {
	Send(connID string, event string, body any) bool
}

type IRoomService interface {
	// Discussion rooms (N-party, full-mesh discovery).
	CreateDiscussion(connID, userName string) string
	JoinDiscussion(code, connID, userName string) error
	LeaveDiscussion(connID string)
	// RelayToDiscussionPeers forwards an auxiliary payload (whiteboard
	// strokes, clears) to every other member of connID's room. A sender in
	// no room is a silent drop.
	RelayToDiscussionPeers(connID, event string, body any)

	// Interview rooms (exactly interviewer + student, shared code buffer).
	CreateInterview(connID, userName string) string
	JoinInterview(code, connID, userName string) error
	ApplyCodeChange(connID, newCode string)
	ApplyCodeRun(connID, output string)
	LeaveInterview(connID string)

	Stats() (discussion, interview int)
}

type roomService struct {
	sender Sender

	mu         sync.Mutex
	discussion map[string]*discussionRoom
	interview  map[string]*interviewRoom
}

func NewRoomService(sender Sender) IRoomService {
	return &roomService{
		sender:     sender,
		discussion: make(map[string]*discussionRoom),
		interview:  make(map[string]*interviewRoom),
	}
}

func (svc *roomService) Stats() (int, int) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.discussion), len(svc.interview)
}
