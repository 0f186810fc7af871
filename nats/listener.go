package nats

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"holdem.io/server/game"
	"holdem.io/server/logging"
)

var natsListenerLogger = log.With().Str("logger_name", "nats::listener").Logger()

// request ops
const (
	OpJoin    = "join"
	OpPlayers = "players"
	OpState   = "state"
	OpStart   = "start"
	OpBet     = "bet"
	OpFold    = "fold"
)

type RoomRequest struct {
	Op       string `json:"op"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Amount   int    `json:"amount"`
}

type ResponseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type RoomResponse struct {
	OK      bool               `json:"ok"`
	Error   *ResponseError     `json:"error,omitempty"`
	Players []game.PlayerState `json:"players,omitempty"`
	State   *game.GameState    `json:"state,omitempty"`
}

type roomManager interface {
	Join(ctx context.Context, roomID string, playerID string, nickname string) error
	GetPlayers(ctx context.Context, roomID string) ([]game.PlayerState, error)
	GetState(ctx context.Context, roomID string) (game.GameState, error)
	StartGame(ctx context.Context, roomID string) error
	Bet(ctx context.Context, roomID string, playerID string, amount int) error
	Fold(ctx context.Context, roomID string, playerID string) error
}

// RoomRequestListener serves room operations over NATS request/reply on
// room.<id>.request. Messages are handled one at a time in arrival order.
type RoomRequestListener struct {
	nc      *natsgo.Conn
	manager roomManager
	sub     *natsgo.Subscription
}

func NewRoomRequestListener(nc *natsgo.Conn, manager roomManager) (*RoomRequestListener, error) {
	listener := &RoomRequestListener{
		nc:      nc,
		manager: manager,
	}
	natsListenerLogger.Info().Msgf("Listening nats subject: %s for room requests", RoomRequestSubject)
	sub, err := nc.Subscribe(RoomRequestSubject, listener.listenForMessages)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Unable to subscribe to %s", RoomRequestSubject))
	}
	listener.sub = sub
	return listener, nil
}

func (l *RoomRequestListener) Close() error {
	if l.sub == nil {
		return nil
	}
	return l.sub.Unsubscribe()
}

func (l *RoomRequestListener) listenForMessages(msg *natsgo.Msg) {
	roomID, ok := roomIDFromSubject(msg.Subject)
	if !ok {
		natsListenerLogger.Warn().Msgf("Ignoring message on unexpected subject %s", msg.Subject)
		return
	}
	reply := l.handleRequest(context.Background(), roomID, msg.Data)
	if msg.Reply == "" {
		return
	}
	err := msg.Respond(reply)
	if err != nil {
		natsListenerLogger.Error().Str(logging.RoomIDKey, roomID).Msgf("Unable to respond: %v", err)
	}
}

func (l *RoomRequestListener) handleRequest(ctx context.Context, roomID string, data []byte) []byte {
	var request RoomRequest
	err := jsoniter.Unmarshal(data, &request)
	if err != nil {
		natsListenerLogger.Error().Str(logging.RoomIDKey, roomID).Msgf("Invalid room request: %s", string(data))
		return marshalResponse(errorResponse("InvalidRequest", err))
	}

	var response RoomResponse
	switch request.Op {
	case OpJoin:
		if request.PlayerID == "" {
			return marshalResponse(errorResponse("InvalidRequest", fmt.Errorf("playerId is required")))
		}
		err = l.manager.Join(ctx, roomID, request.PlayerID, request.Nickname)
		if err == nil {
			response.Players, err = l.manager.GetPlayers(ctx, roomID)
		}
	case OpPlayers:
		response.Players, err = l.manager.GetPlayers(ctx, roomID)
	case OpState:
		err = l.withState(ctx, roomID, &response)
	case OpStart:
		err = l.manager.StartGame(ctx, roomID)
		if err == nil {
			err = l.withState(ctx, roomID, &response)
		}
	case OpBet:
		err = l.manager.Bet(ctx, roomID, request.PlayerID, request.Amount)
		if err == nil {
			err = l.withState(ctx, roomID, &response)
		}
	case OpFold:
		err = l.manager.Fold(ctx, roomID, request.PlayerID)
		if err == nil {
			err = l.withState(ctx, roomID, &response)
		}
	default:
		natsListenerLogger.Warn().Str(logging.RoomIDKey, roomID).Msgf("Unhandled room request: %s", string(data))
		return marshalResponse(errorResponse("InvalidRequest", fmt.Errorf("unknown op [%s]", request.Op)))
	}

	if err != nil {
		kind := "Internal"
		if k, ok := game.KindOf(err); ok {
			kind = string(k)
		}
		return marshalResponse(errorResponse(kind, err))
	}
	response.OK = true
	return marshalResponse(response)
}

func (l *RoomRequestListener) withState(ctx context.Context, roomID string, response *RoomResponse) error {
	state, err := l.manager.GetState(ctx, roomID)
	if err != nil {
		return err
	}
	response.State = &state
	return nil
}

func errorResponse(kind string, err error) RoomResponse {
	return RoomResponse{
		OK: false,
		Error: &ResponseError{
			Kind:    kind,
			Message: err.Error(),
		},
	}
}

func marshalResponse(response RoomResponse) []byte {
	data, _ := jsoniter.Marshal(response)
	return data
}
