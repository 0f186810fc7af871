package game

import (
	"fmt"
)

// Phase is the stage of the current hand in a room.
type Phase int32

const (
	PhaseNotStarted Phase = iota
	PhaseHoleCardsDealt
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseEnded
)

var Phase_name = map[Phase]string{
	PhaseNotStarted:     "NotStarted",
	PhaseHoleCardsDealt: "HoleCardsDealt",
	PhaseFlop:           "Flop",
	PhaseTurn:           "Turn",
	PhaseRiver:          "River",
	PhaseShowdown:       "Showdown",
	PhaseEnded:          "Ended",
}

var Phase_value = map[string]Phase{
	"NotStarted":     PhaseNotStarted,
	"HoleCardsDealt": PhaseHoleCardsDealt,
	"Flop":           PhaseFlop,
	"Turn":           PhaseTurn,
	"River":          PhaseRiver,
	"Showdown":       PhaseShowdown,
	"Ended":          PhaseEnded,
}

func (p Phase) String() string {
	if name, ok := Phase_name[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// IsBetting is true for the phases in which Bet is accepted.
func (p Phase) IsBetting() bool {
	switch p {
	case PhaseHoleCardsDealt, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// next returns the street that follows a settled betting round and the
// number of cards revealed when entering it.
func (p Phase) next() (Phase, int) {
	switch p {
	case PhaseHoleCardsDealt:
		return PhaseFlop, 3
	case PhaseFlop:
		return PhaseTurn, 1
	case PhaseTurn:
		return PhaseRiver, 1
	}
	return PhaseShowdown, 0
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	phase, ok := Phase_value[string(text)]
	if !ok {
		return fmt.Errorf("Unknown phase [%s]", string(text))
	}
	*p = phase
	return nil
}
