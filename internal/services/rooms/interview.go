package rooms

// starterCode seeds the shared buffer of every new interview room.
const starterCode = `// Welcome to the interview room!
// The student can edit and run this code.

function sayHello(name) {
  console.log('Hello, ' + name + '!');
}

sayHello('World');
`

type interviewRoom struct {
	code        string
	interviewer Participant
	student     *Participant
	sharedCode  string
}

func (r *interviewRoom) contains(connID string) bool {
	return r.interviewer.ID == connID || (r.student != nil && r.student.ID == connID)
}

// other returns the occupant that is not connID, if any.
func (r *interviewRoom) other(connID string) *Participant {
	if r.interviewer.ID != connID {
		iv := r.interviewer
		return &iv
	}
	return r.student
}

// interviewReadyBody is delivered identically to both parties; each side
// derives its own role by comparing its connection id against the snapshot.
type interviewReadyBody struct {
	RoomCode    string       `json:"roomCode"`
	Interviewer Participant  `json:"interviewer"`
	Student     *Participant `json:"student,omitempty"`
	Code        string       `json:"code"`
}

func (svc *roomService) CreateInterview(connID, userName string) string {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	// Losing either side ends a session, so occupying a second room is
	// equivalent to leaving the first.
	svc.leaveInterviewLocked(connID)

	code := newRoomCode(func(c string) bool {
		_, ok := svc.interview[c]
		return ok
	})
	svc.interview[code] = &interviewRoom{
		code:        code,
		interviewer: Participant{ID: connID, Name: userName},
		sharedCode:  starterCode,
	}

	svc.sender.Send(connID, "interview-room-created", code)
	return code
}

func (svc *roomService) JoinInterview(code, connID, userName string) error {
	code = normalizeCode(code)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	room, ok := svc.interview[code]
	if !ok {
		return ErrInterviewRoomNotFound
	}
	if room.interviewer.ID == connID {
		return nil
	}
	if room.student != nil {
		if room.student.ID == connID {
			return nil
		}
		// Never silently replace the seated student.
		return ErrInterviewRoomFull
	}

	svc.leaveInterviewLocked(connID)
	if room, ok = svc.interview[code]; !ok {
		return ErrInterviewRoomNotFound
	}

	room.student = &Participant{ID: connID, Name: userName}

	ready := interviewReadyBody{
		RoomCode:    room.code,
		Interviewer: room.interviewer,
		Student:     room.student,
		Code:        room.sharedCode,
	}
	svc.sender.Send(room.interviewer.ID, "interview-room-ready", ready)
	svc.sender.Send(room.student.ID, "interview-room-ready", ready)
	return nil
}

func (svc *roomService) ApplyCodeChange(connID, newCode string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	room := svc.interviewRoomOfLocked(connID)
	if room == nil {
		return
	}
	room.sharedCode = newCode

	// Never echo an edit back to its origin; it would clobber the editor's
	// cursor in the browser.
	if other := room.other(connID); other != nil {
		svc.sender.Send(other.ID, "code-updated", newCode)
	}
}

func (svc *roomService) ApplyCodeRun(connID, output string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	room := svc.interviewRoomOfLocked(connID)
	if room == nil {
		return
	}

	// Unlike edits, run output goes to both sides, runner included.
	svc.sender.Send(room.interviewer.ID, "output-updated", output)
	if room.student != nil {
		svc.sender.Send(room.student.ID, "output-updated", output)
	}
}

func (svc *roomService) LeaveInterview(connID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.leaveInterviewLocked(connID)
}

// leaveInterviewLocked destroys the room connID occupies, if any, and tells
// the other occupant the partner is gone. Any party leaving ends the session;
// the roles are not interchangeable.
func (svc *roomService) leaveInterviewLocked(connID string) {
	room := svc.interviewRoomOfLocked(connID)
	if room == nil {
		return
	}

	delete(svc.interview, room.code)
	if other := room.other(connID); other != nil {
		svc.sender.Send(other.ID, "partner-disconnected", nil)
	}
}

func (svc *roomService) interviewRoomOfLocked(connID string) *interviewRoom {
	for _, room := range svc.interview {
		if room.contains(connID) {
			return room
		}
	}
	return nil
}
