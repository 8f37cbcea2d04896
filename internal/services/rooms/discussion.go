package rooms

type discussionRoom struct {
	code         string
	participants []Participant
}

func (r *discussionRoom) contains(connID string) bool {
	for _, p := range r.participants {
		if p.ID == connID {
			return true
		}
	}
	return false
}

// joinedRoomBody is the pre-join snapshot sent to the joiner.
type joinedRoomBody struct {
	RoomCode     string        `json:"roomCode"`
	Participants []Participant `json:"participants"`
}

type userJoiningBody struct {
	NewParticipant Participant `json:"newParticipant"`
}

type userLeftBody struct {
	SocketID string `json:"socketId"`
}

func (svc *roomService) CreateDiscussion(connID, userName string) string {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	// A connection lives in at most one discussion room.
	svc.leaveDiscussionLocked(connID)

	code := newRoomCode(func(c string) bool {
		_, ok := svc.discussion[c]
		return ok
	})
	svc.discussion[code] = &discussionRoom{
		code:         code,
		participants: []Participant{{ID: connID, Name: userName}},
	}

	svc.sender.Send(connID, "gd-room-created", code)
	return code
}

func (svc *roomService) JoinDiscussion(code, connID, userName string) error {
	code = normalizeCode(code)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	room, ok := svc.discussion[code]
	if !ok {
		return ErrRoomNotFound
	}
	if room.contains(connID) {
		return nil
	}

	svc.leaveDiscussionLocked(connID)
	// leaveDiscussionLocked may have destroyed the room the caller was the
	// last member of, never the one being joined, but re-check anyway.
	if room, ok = svc.discussion[code]; !ok {
		return ErrRoomNotFound
	}

	// The joiner gets the pre-join snapshot first, then the append happens,
	// then the existing members hear about the joiner. Doing all three under
	// the room lock is what keeps every participant's peer list consistent:
	// nobody can observe the new member before the snapshot it is absent
	// from has been sent.
	snapshot := make([]Participant, len(room.participants))
	copy(snapshot, room.participants)
	svc.sender.Send(connID, "joined-gd-room", joinedRoomBody{
		RoomCode:     code,
		Participants: snapshot,
	})

	joiner := Participant{ID: connID, Name: userName}
	room.participants = append(room.participants, joiner)

	for _, p := range snapshot {
		svc.sender.Send(p.ID, "user-joining-gd", userJoiningBody{NewParticipant: joiner})
	}
	return nil
}

func (svc *roomService) LeaveDiscussion(connID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.leaveDiscussionLocked(connID)
}

func (svc *roomService) RelayToDiscussionPeers(connID, event string, body any) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	room := svc.discussionRoomOfLocked(connID)
	if room == nil {
		return
	}
	for _, p := range room.participants {
		if p.ID != connID {
			svc.sender.Send(p.ID, event, body)
		}
	}
}

func (svc *roomService) leaveDiscussionLocked(connID string) {
	room := svc.discussionRoomOfLocked(connID)
	if room == nil {
		return
	}

	remaining := room.participants[:0]
	for _, p := range room.participants {
		if p.ID != connID {
			remaining = append(remaining, p)
		}
	}
	room.participants = remaining

	if len(room.participants) == 0 {
		delete(svc.discussion, room.code)
		return
	}
	for _, p := range room.participants {
		svc.sender.Send(p.ID, "user-left-gd", userLeftBody{SocketID: connID})
	}
}

func (svc *roomService) discussionRoomOfLocked(connID string) *discussionRoom {
	for _, room := range svc.discussion {
		if room.contains(connID) {
			return room
		}
	}
	return nil
}
