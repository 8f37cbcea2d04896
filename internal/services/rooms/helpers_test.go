package rooms

import "sync"

// recorder captures every envelope the service fans out.
type recorder struct {
	mu   sync.Mutex
	msgs []sentMsg
}

type sentMsg struct {
	ConnID string
	Event  string
	Body   any
}

func (r *recorder) Send(connID string, event string, body any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sentMsg{ConnID: connID, Event: event, Body: body})
	return true
}

func (r *recorder) all() []sentMsg {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentMsg, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *recorder) byEvent(event string) []sentMsg {
	var out []sentMsg
	for _, m := range r.all() {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) to(connID string) []sentMsg {
	var out []sentMsg
	for _, m := range r.all() {
		if m.ConnID == connID {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
