package rooms

import (
	"math/rand/v2"
	"strings"
)

const (
	roomCodeLen     = 5
	roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newRoomCode returns a fresh code not currently held by taken. Codes are
// unique per room kind while the room is alive and become reusable once it
// is destroyed.
func newRoomCode(taken func(string) bool) string {
	for {
		b := make([]byte, roomCodeLen)
		for i := range b {
			b[i] = roomCodeCharset[rand.IntN(len(roomCodeCharset))]
		}
		code := string(b)
		if !taken(code) {
			return code
		}
	}
}

// normalizeCode folds case so "q1w2e" and "Q1W2E" address the same room.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
