package game

import (
	"github.com/rs/zerolog/log"

	"holdem.io/server/logging"
	"holdem.io/server/util"
)

var recorderLogger = log.With().Str("logger_name", "game::recorder").Logger()

// Recorder archives HandEnded events into a HandHistory. Publish only queues
// the record; the store is written from the recorder's own goroutine so a
// slow store never holds up a room.
type Recorder struct {
	history HandHistory
	chSave  chan *HandRecord
	end     chan bool
	done    chan struct{}
}

func NewRecorder(history HandHistory, queueSize int) *Recorder {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Recorder{
		history: history,
		chSave:  make(chan *HandRecord, queueSize),
		end:     make(chan bool),
		done:    make(chan struct{}),
	}
}

func (r *Recorder) Start() {
	go r.loop()
}

func (r *Recorder) Publish(event Event) {
	if event.Type != EventHandEnded {
		return
	}
	select {
	case r.chSave <- handRecordFromEvent(event):
	default:
		util.Metrics.HistorySaveFailed()
		recorderLogger.Warn().
			Str(logging.RoomIDKey, event.RoomID).
			Str(logging.HandIDKey, event.HandID).
			Msg("Hand history queue is full. Dropping hand record.")
	}
}

// Stop writes whatever is still queued and returns when the loop is done.
func (r *Recorder) Stop() {
	r.end <- true
	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)
	for {
		select {
		case record := <-r.chSave:
			r.save(record)
		case <-r.end:
			for {
				select {
				case record := <-r.chSave:
					r.save(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) save(record *HandRecord) {
	err := r.history.Save(record.RoomID, record)
	if err != nil {
		util.Metrics.HistorySaveFailed()
		recorderLogger.Error().
			Str(logging.RoomIDKey, record.RoomID).
			Str(logging.HandIDKey, record.HandID).
			Msgf("Unable to archive hand: %v", err)
	}
}
