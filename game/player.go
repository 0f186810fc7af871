package game

type Player struct {
	ID       string
	Nickname string
	Chips    int
}

// PlayerState is the copy of a seat handed out to callers.
type PlayerState struct {
	PlayerID  string `json:"playerId"`
	Nickname  string `json:"nickname"`
	Chips     int    `json:"chips"`
	HasFolded bool   `json:"hasFolded"`
}

// GameState is the copy of the room's hand state handed out to callers.
// CurrentTurnPlayerID is nil when no one is to act.
type GameState struct {
	RoomID              string   `json:"roomId"`
	HandID              string   `json:"handId,omitempty"`
	HandNum             uint32   `json:"handNumber"`
	CommunityCards      []string `json:"communityCards"`
	Pot                 int      `json:"pot"`
	CurrentTurnPlayerID *string  `json:"currentTurnPlayerId"`
	Phase               Phase    `json:"phase"`
	Winners             []string `json:"winners,omitempty"`
}

// HandResult describes how a finished hand was settled.
type HandResult struct {
	HandID         string         `json:"handId"`
	HandNum        uint32         `json:"handNumber"`
	Winners        []string       `json:"winners"`
	Payouts        map[string]int `json:"payouts"`
	Pot            int            `json:"pot"`
	CommunityCards []string       `json:"communityCards"`
}

// splitPot divides pot between winners. Chips that do not divide evenly go
// one each to the earliest winners.
func splitPot(pot int, winners []string) map[string]int {
	payouts := make(map[string]int, len(winners))
	if len(winners) == 0 {
		return payouts
	}
	share := pot / len(winners)
	remainder := pot % len(winners)
	for i, playerID := range winners {
		payouts[playerID] = share
		if i < remainder {
			payouts[playerID]++
		}
	}
	return payouts
}
