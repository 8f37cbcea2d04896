package statushandler

type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is a read-only operational snapshot; nothing in the browser
// client depends on it.
type StatsResponse struct {
	Connections     int `json:"connections"`
	RegisteredUsers int `json:"registered_users"`
	DiscussionRooms int `json:"discussion_rooms"`
	InterviewRooms  int `json:"interview_rooms"`
}
