package rest

import (
	"sync"

	"holdem.io/server/game"
	"holdem.io/server/util"
)

// EventHub fans room events out to websocket subscribers. Publish runs on the
// room goroutine and drops events for subscribers that are not keeping up.
type EventHub struct {
	lock        sync.RWMutex
	subscribers map[string]map[*subscriber]bool
	bufferSize  int
}

type subscriber struct {
	ch chan game.Event
}

func NewEventHub(bufferSize int) *EventHub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &EventHub{
		subscribers: make(map[string]map[*subscriber]bool),
		bufferSize:  bufferSize,
	}
}

// Subscribe returns the event stream of a room and the function that ends the
// subscription.
func (h *EventHub) Subscribe(roomID string) (<-chan game.Event, func()) {
	sub := &subscriber{ch: make(chan game.Event, h.bufferSize)}

	h.lock.Lock()
	if h.subscribers[roomID] == nil {
		h.subscribers[roomID] = make(map[*subscriber]bool)
	}
	h.subscribers[roomID][sub] = true
	h.lock.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.lock.Lock()
			delete(h.subscribers[roomID], sub)
			if len(h.subscribers[roomID]) == 0 {
				delete(h.subscribers, roomID)
			}
			h.lock.Unlock()
		})
	}
	return sub.ch, unsubscribe
}

func (h *EventHub) Publish(event game.Event) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	for sub := range h.subscribers[event.RoomID] {
		select {
		case sub.ch <- event:
		default:
			util.Metrics.EventDropped()
		}
	}
}

func (h *EventHub) SubscriberCount(roomID string) int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.subscribers[roomID])
}
