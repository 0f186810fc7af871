package game

import (
	"time"

	"holdem.io/server/logging"
	"holdem.io/server/util"
)

type EventType string

const (
	EventPlayerJoined  EventType = "PlayerJoined"
	EventHandStarted   EventType = "HandStarted"
	EventBetAccepted   EventType = "BetAccepted"
	EventPlayerFolded  EventType = "PlayerFolded"
	EventPhaseAdvanced EventType = "PhaseAdvanced"
	EventHandEnded     EventType = "HandEnded"
)

// Event is emitted by a room after every accepted state change, in the order
// the changes happened.
type Event struct {
	Type           EventType      `json:"type"`
	RoomID         string         `json:"roomId"`
	HandID         string         `json:"handId,omitempty"`
	HandNum        uint32         `json:"handNumber,omitempty"`
	PlayerID       string         `json:"playerId,omitempty"`
	Nickname       string         `json:"nickname,omitempty"`
	Amount         int            `json:"amount,omitempty"`
	Pot            int            `json:"pot"`
	Phase          Phase          `json:"phase"`
	CommunityCards []string       `json:"communityCards,omitempty"`
	Players        []string       `json:"players,omitempty"`
	Winners        []string       `json:"winners,omitempty"`
	Payouts        map[string]int `json:"payouts,omitempty"`
	At             time.Time      `json:"at"`
}

// EventSink receives room events on the room goroutine. Implementations must
// not block.
type EventSink interface {
	Publish(event Event)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

// MultiSink fans an event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) Publish(event Event) {
	for _, sink := range m {
		sink.Publish(event)
	}
}

// ChannelSink forwards events to a buffered channel and drops them when the
// reader falls behind.
type ChannelSink struct {
	ch chan Event
}

func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, size)}
}

func (c *ChannelSink) Publish(event Event) {
	select {
	case c.ch <- event:
	default:
		util.Metrics.EventDropped()
		roomLogger.Warn().
			Str(logging.RoomIDKey, event.RoomID).
			Str("event", string(event.Type)).
			Msg("Event channel is full. Dropping event.")
	}
}

func (c *ChannelSink) Events() <-chan Event {
	return c.ch
}
