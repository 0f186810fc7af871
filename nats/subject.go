package nats

import (
	"fmt"
	"strings"
)

// RoomRequestSubject matches the request subject of every room.
const RoomRequestSubject = "room.*.request"

func GetRoomRequestSubject(roomID string) string {
	return fmt.Sprintf("room.%s.request", roomID)
}

func GetRoomEventSubject(roomID string) string {
	return fmt.Sprintf("room.%s.events", roomID)
}

// roomIDFromSubject extracts the room id from room.<id>.request.
func roomIDFromSubject(subject string) (string, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != "room" || parts[1] == "" || parts[2] != "request" {
		return "", false
	}
	return parts[1], true
}
