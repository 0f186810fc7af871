package game

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	InsufficientPlayers ErrorKind = "InsufficientPlayers"
	InvalidPhase        ErrorKind = "InvalidPhase"
	NotSeated           ErrorKind = "NotSeated"
	AlreadyFolded       ErrorKind = "AlreadyFolded"
	NotYourTurn         ErrorKind = "NotYourTurn"
	InvalidAmount       ErrorKind = "InvalidAmount"
	InsufficientChips   ErrorKind = "InsufficientChips"
	DeckExhausted       ErrorKind = "DeckExhausted"
	NoActivePlayers     ErrorKind = "NoActivePlayers"
	RoomClosed          ErrorKind = "RoomClosed"
)

// RoomError is returned for every rejected room operation. A rejected
// operation never changes the room.
type RoomError struct {
	Kind ErrorKind
	Msg  string
}

func (e RoomError) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newRoomError(kind ErrorKind, format string, args ...interface{}) RoomError {
	return RoomError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind from err or anything it wraps.
func KindOf(err error) (ErrorKind, bool) {
	var roomErr RoomError
	if errors.As(err, &roomErr) {
		return roomErr.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

type UnexpectedPhaseError struct {
	Phase Phase
}

func (e UnexpectedPhaseError) Error() string {
	return fmt.Sprintf("Unexpected phase: %s", e.Phase)
}
