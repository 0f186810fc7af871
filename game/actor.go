package game

import (
	"context"
	"runtime/debug"

	"github.com/pkg/errors"

	"holdem.io/server/logging"
	"holdem.io/server/util"
)

type roomRequest struct {
	op     string
	handle func(room *Room) error
	reply  chan error
}

// roomActor owns a Room. All reads and writes of the room happen on the
// actor's goroutine, one request at a time in arrival order.
type roomActor struct {
	room         *Room
	chRequest    chan *roomRequest
	end          chan bool
	done         chan struct{}
	crashHandler func(actor *roomActor)
}

func newRoomActor(room *Room, queueSize int, crashHandler func(actor *roomActor)) *roomActor {
	return &roomActor{
		room:         room,
		chRequest:    make(chan *roomRequest, queueSize),
		end:          make(chan bool),
		done:         make(chan struct{}),
		crashHandler: crashHandler,
	}
}

func (a *roomActor) start() {
	go a.run()
}

func (a *roomActor) run() {
	defer func() {
		err := recover()
		if err != nil {
			// Panic occurred.
			roomLogger.Error().
				Str(logging.RoomIDKey, a.room.ID()).
				Msgf("Room loop returning due to panic: %s\nStack Trace:\n%s", err, string(debug.Stack()))
			util.Metrics.RoomCrashed()
			// Unmap the room before waking up waiting callers so that their
			// next request reaches a fresh room.
			if a.crashHandler != nil {
				a.crashHandler(a)
			}
			close(a.done)
		} else {
			close(a.done)
			roomLogger.Info().Str(logging.RoomIDKey, a.room.ID()).Msg("Room loop returning")
		}
	}()

	ended := false
	for !ended {
		select {
		case <-a.end:
			ended = true
		case req := <-a.chRequest:
			req.reply <- req.handle(a.room)
		}
	}
}

// submit queues req and waits for the room to process it. A caller that gives
// up through ctx does not withdraw a request that is already queued.
func (a *roomActor) submit(ctx context.Context, req *roomRequest) error {
	select {
	case a.chRequest <- req:
	case <-a.done:
		return newRoomError(RoomClosed, "room %s is closed", a.room.ID())
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "%s request for room %s was not queued", req.op, a.room.ID())
	}

	select {
	case err := <-req.reply:
		return err
	case <-a.done:
		select {
		case err := <-req.reply:
			return err
		default:
		}
		return newRoomError(RoomClosed, "room %s closed before %s completed", a.room.ID(), req.op)
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "%s request for room %s did not complete", req.op, a.room.ID())
	}
}

func (a *roomActor) stop() {
	select {
	case a.end <- true:
	case <-a.done:
	}
	<-a.done
}
