package nats

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"holdem.io/server/game"
	"holdem.io/server/logging"
)

var natsPublisherLogger = log.With().Str("logger_name", "nats::publisher").Logger()

type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// EventPublisher forwards room events to room.<id>.events. The NATS client
// buffers outgoing messages, so Publish does not wait on the network.
type EventPublisher struct {
	nc natsPublisher
}

func NewEventPublisher(nc natsPublisher) *EventPublisher {
	return &EventPublisher{nc: nc}
}

func (p *EventPublisher) Publish(event game.Event) {
	data, err := jsoniter.Marshal(event)
	if err != nil {
		natsPublisherLogger.Error().
			Str(logging.RoomIDKey, event.RoomID).
			Msgf("Unable to marshal %s event: %v", event.Type, err)
		return
	}
	err = p.nc.Publish(GetRoomEventSubject(event.RoomID), data)
	if err != nil {
		natsPublisherLogger.Error().
			Str(logging.RoomIDKey, event.RoomID).
			Msgf("Unable to publish %s event: %v", event.Type, err)
	}
}
