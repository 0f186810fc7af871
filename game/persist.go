package game

import (
	"time"
)

// HandRecord is the archived outcome of one finished hand.
type HandRecord struct {
	RoomID         string         `json:"roomId"`
	HandID         string         `json:"handId"`
	HandNum        uint32         `json:"handNumber"`
	Winners        []string       `json:"winners"`
	Payouts        map[string]int `json:"payouts"`
	Pot            int            `json:"pot"`
	CommunityCards []string       `json:"communityCards"`
	EndedAt        time.Time      `json:"endedAt"`
}

// HandHistory archives finished hands per room. Load returns the newest
// records first. It never holds live room state.
type HandHistory interface {
	Save(roomID string, record *HandRecord) error
	Load(roomID string, limit int) ([]HandRecord, error)
	Remove(roomID string) error
}

func handRecordFromEvent(event Event) *HandRecord {
	return &HandRecord{
		RoomID:         event.RoomID,
		HandID:         event.HandID,
		HandNum:        event.HandNum,
		Winners:        append([]string{}, event.Winners...),
		Payouts:        copyPayouts(event.Payouts),
		Pot:            event.Pot,
		CommunityCards: append([]string{}, event.CommunityCards...),
		EndedAt:        event.At,
	}
}
