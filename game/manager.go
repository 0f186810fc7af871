package game

import (
	"context"
	"fmt"

	cmap "github.com/orcaman/concurrent-map"
	"github.com/rs/zerolog/log"

	"holdem.io/server/logging"
	"holdem.io/server/util"
)

var managerLogger = log.With().Str("logger_name", "game::manager").Logger()

// Manager routes operations to rooms by id. A room is created the first time
// its id is referenced and lives until the manager shuts down.
type Manager struct {
	config    Config
	evaluator ShowdownEvaluator
	sink      EventSink
	rooms     cmap.ConcurrentMap
}

func NewManager(config Config, evaluator ShowdownEvaluator, sinks ...EventSink) *Manager {
	sink := MultiSink{metricsSink{}}
	for _, s := range sinks {
		if s != nil {
			sink = append(sink, s)
		}
	}
	if config.Server.RequestQueue < 1 {
		config.Server.RequestQueue = 1
	}
	return &Manager{
		config:    config,
		evaluator: evaluator,
		sink:      sink,
		rooms:     cmap.New(),
	}
}

func (m *Manager) Join(ctx context.Context, roomID string, playerID string, nickname string) error {
	return m.do(ctx, roomID, "join", func(room *Room) error {
		room.Join(playerID, nickname)
		return nil
	})
}

func (m *Manager) GetPlayers(ctx context.Context, roomID string) ([]PlayerState, error) {
	var players []PlayerState
	err := m.do(ctx, roomID, "players", func(room *Room) error {
		players = room.GetPlayers()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (m *Manager) GetState(ctx context.Context, roomID string) (GameState, error) {
	var state GameState
	err := m.do(ctx, roomID, "state", func(room *Room) error {
		state = room.GetState()
		return nil
	})
	if err != nil {
		return GameState{}, err
	}
	return state, nil
}

func (m *Manager) StartGame(ctx context.Context, roomID string) error {
	return m.do(ctx, roomID, "start", func(room *Room) error {
		return room.StartGame()
	})
}

func (m *Manager) Bet(ctx context.Context, roomID string, playerID string, amount int) error {
	return m.do(ctx, roomID, "bet", func(room *Room) error {
		return room.Bet(playerID, amount)
	})
}

func (m *Manager) Fold(ctx context.Context, roomID string, playerID string) error {
	return m.do(ctx, roomID, "fold", func(room *Room) error {
		return room.Fold(playerID)
	})
}

// Rooms returns the ids of the rooms that currently exist.
func (m *Manager) Rooms() []string {
	return m.rooms.Keys()
}

// Shutdown stops every room goroutine.
func (m *Manager) Shutdown() {
	for item := range m.rooms.IterBuffered() {
		actor := item.Val.(*roomActor)
		actor.stop()
		m.rooms.Remove(item.Key)
	}
	util.Metrics.SetActiveRooms(m.rooms.Count())
}

func (m *Manager) do(ctx context.Context, roomID string, op string, handle func(room *Room) error) error {
	if roomID == "" {
		return fmt.Errorf("%s: room id is empty", op)
	}
	if timeout := m.config.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	actor := m.room(roomID)
	err := actor.submit(ctx, &roomRequest{
		op:     op,
		handle: handle,
		reply:  make(chan error, 1),
	})
	if err != nil {
		kind, ok := KindOf(err)
		if !ok {
			kind = "Internal"
		}
		util.Metrics.ActionRejected(op, string(kind))
		managerLogger.Debug().
			Str(logging.RoomIDKey, roomID).
			Str(logging.OpKey, op).
			Str(logging.ErrorKindKey, string(kind)).
			Msgf("Request rejected: %v", err)
		return err
	}
	util.Metrics.ActionAccepted(op)
	return nil
}

// room returns the actor for roomID, creating and starting it under the map
// shard lock when it does not exist yet.
func (m *Manager) room(roomID string) *roomActor {
	created := false
	v := m.rooms.Upsert(roomID, nil, func(exist bool, valueInMap interface{}, newValue interface{}) interface{} {
		if exist {
			return valueInMap
		}
		room := NewRoom(roomID, m.config.Room, m.evaluator, m.sink)
		actor := newRoomActor(room, m.config.Server.RequestQueue, m.roomCrashed)
		actor.start()
		created = true
		return actor
	})
	if created {
		managerLogger.Info().Str(logging.RoomIDKey, roomID).Msg("Room created")
		util.Metrics.RoomCreated()
		util.Metrics.SetActiveRooms(m.rooms.Count())
	}
	return v.(*roomActor)
}

// roomCrashed drops a crashed room so the next reference starts a fresh one.
func (m *Manager) roomCrashed(actor *roomActor) {
	roomID := actor.room.ID()
	managerLogger.Error().Str(logging.RoomIDKey, roomID).Msg("Removing crashed room")
	if v, ok := m.rooms.Get(roomID); ok && v.(*roomActor) == actor {
		m.rooms.Remove(roomID)
	}
	util.Metrics.SetActiveRooms(m.rooms.Count())
}

type metricsSink struct{}

func (metricsSink) Publish(event Event) {
	util.Metrics.EventPublished(string(event.Type))
}
