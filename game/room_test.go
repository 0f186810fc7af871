package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem.io/server/poker"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Publish(event Event) {
	s.events = append(s.events, event)
}

func (s *recordingSink) types() []EventType {
	types := make([]EventType, len(s.events))
	for i, event := range s.events {
		types[i] = event.Type
	}
	return types
}

func testRoomConfig() RoomConfig {
	return RoomConfig{
		StartingChips: DefaultStartingChips,
		MinPlayers:    DefaultMinPlayers,
		Seed:          1,
	}
}

func newTestRoom(t *testing.T, evaluator ShowdownEvaluator, players ...string) (*Room, *recordingSink) {
	sink := &recordingSink{}
	room := NewRoom("room-1", testRoomConfig(), evaluator, sink)
	for _, playerID := range players {
		room.Join(playerID, "nick-"+playerID)
	}
	return room, sink
}

func startedRoom(t *testing.T, players ...string) (*Room, *recordingSink) {
	room, sink := newTestRoom(t, nil, players...)
	require.NoError(t, room.StartGame())
	return room, sink
}

func currentTurn(room *Room) string {
	state := room.GetState()
	if state.CurrentTurnPlayerID == nil {
		return ""
	}
	return *state.CurrentTurnPlayerID
}

func chipsOf(room *Room) map[string]int {
	chips := make(map[string]int)
	for _, player := range room.GetPlayers() {
		chips[player.PlayerID] = player.Chips
	}
	return chips
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	actual, ok := KindOf(err)
	require.True(t, ok, "error %v is not a RoomError", err)
	require.Equal(t, kind, actual, "unexpected error %v", err)
}

// requireDeckPartition checks that deck, board and burned cards are the full
// deck with no card repeated.
func requireDeckPartition(t *testing.T, room *Room) {
	t.Helper()
	seen := make(map[poker.Card]bool)
	all := append(room.deck.Cards(), room.communityCards...)
	all = append(all, room.deck.Burned()...)
	for _, card := range all {
		require.False(t, seen[card], "card %s appears twice", card)
		seen[card] = true
	}
	require.Equal(t, 52, len(seen))
}

func TestJoinIsIdempotent(t *testing.T) {
	room, sink := newTestRoom(t, nil)
	room.Join("A", "alice")
	room.Join("A", "alice again")

	players := room.GetPlayers()
	expected := []PlayerState{
		{PlayerID: "A", Nickname: "alice", Chips: 1000, HasFolded: false},
	}
	if diff := cmp.Diff(expected, players); diff != "" {
		t.Errorf("GetPlayers mismatch (-expected +actual):\n%s", diff)
	}
	assert.Equal(t, []EventType{EventPlayerJoined}, sink.types())
}

func TestGetPlayersKeepsJoinOrder(t *testing.T) {
	room, _ := newTestRoom(t, nil, "C", "A", "B")
	players := room.GetPlayers()
	require.Len(t, players, 3)
	assert.Equal(t, "C", players[0].PlayerID)
	assert.Equal(t, "A", players[1].PlayerID)
	assert.Equal(t, "B", players[2].PlayerID)
}

func TestStartGameInsufficientPlayers(t *testing.T) {
	room, _ := newTestRoom(t, nil)
	requireKind(t, room.StartGame(), InsufficientPlayers)

	room.Join("A", "alice")
	requireKind(t, room.StartGame(), InsufficientPlayers)
	assert.Equal(t, PhaseNotStarted, room.GetState().Phase)
}

func TestStartGame(t *testing.T) {
	room, sink := startedRoom(t, "A", "B")

	state := room.GetState()
	assert.Equal(t, PhaseHoleCardsDealt, state.Phase)
	assert.Equal(t, 0, state.Pot)
	assert.Empty(t, state.CommunityCards)
	assert.Equal(t, "A", currentTurn(room))
	assert.Equal(t, uint32(1), state.HandNum)
	assert.NotEmpty(t, state.HandID)
	assert.Equal(t, 52, room.deck.Remaining())
	assert.Equal(t, []EventType{EventPlayerJoined, EventPlayerJoined, EventHandStarted}, sink.types())
	requireDeckPartition(t, room)
}

func TestBetsSettleIntoFlop(t *testing.T) {
	room, sink := startedRoom(t, "A", "B")

	require.NoError(t, room.Bet("A", 10))
	assert.Equal(t, PhaseHoleCardsDealt, room.GetState().Phase)
	assert.Equal(t, "B", currentTurn(room))

	require.NoError(t, room.Bet("B", 10))
	state := room.GetState()
	assert.Equal(t, PhaseFlop, state.Phase)
	assert.Len(t, state.CommunityCards, 3)
	assert.Equal(t, 20, state.Pot)
	assert.Equal(t, "A", currentTurn(room))
	assert.Equal(t, 48, room.deck.Remaining())
	assert.Len(t, room.deck.Burned(), 1)
	assert.Equal(t, map[string]int{"A": 990, "B": 990}, chipsOf(room))
	requireDeckPartition(t, room)

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, EventPhaseAdvanced, last.Type)
	assert.Equal(t, PhaseFlop, last.Phase)
	assert.Equal(t, state.CommunityCards, last.CommunityCards)
}

func TestStreetsConsumeCardsAndReachShowdown(t *testing.T) {
	room, sink := startedRoom(t, "A", "B")

	require.NoError(t, room.Bet("A", 10))
	require.NoError(t, room.Bet("B", 10))
	assert.Equal(t, 52-4, room.deck.Remaining())

	require.NoError(t, room.Bet("A", 0))
	require.NoError(t, room.Bet("B", 0))
	state := room.GetState()
	assert.Equal(t, PhaseTurn, state.Phase)
	assert.Len(t, state.CommunityCards, 4)
	assert.Equal(t, 52-6, room.deck.Remaining())
	requireDeckPartition(t, room)

	require.NoError(t, room.Bet("A", 0))
	require.NoError(t, room.Bet("B", 0))
	state = room.GetState()
	assert.Equal(t, PhaseRiver, state.Phase)
	assert.Len(t, state.CommunityCards, 5)
	assert.Equal(t, 52-8, room.deck.Remaining())
	requireDeckPartition(t, room)

	require.NoError(t, room.Bet("A", 0))
	require.NoError(t, room.Bet("B", 0))
	state = room.GetState()
	assert.Equal(t, PhaseEnded, state.Phase)
	assert.Nil(t, state.CurrentTurnPlayerID)
	assert.Len(t, state.CommunityCards, 5)
	assert.Equal(t, 20, state.Pot)
	assert.Equal(t, []string{"A"}, state.Winners)
	assert.Equal(t, map[string]int{"A": 1010, "B": 990}, chipsOf(room))

	result, ok := room.LastResult()
	require.True(t, ok)
	assert.Equal(t, map[string]int{"A": 20}, result.Payouts)

	types := sink.types()
	assert.Equal(t, EventPhaseAdvanced, types[len(types)-2])
	assert.Equal(t, PhaseShowdown, sink.events[len(types)-2].Phase)
	assert.Equal(t, EventHandEnded, types[len(types)-1])
}

func TestBetOutOfTurnIsRejected(t *testing.T) {
	room, _ := startedRoom(t, "A", "B")
	before := room.GetState()
	players := room.GetPlayers()

	requireKind(t, room.Bet("B", 10), NotYourTurn)

	if diff := cmp.Diff(before, room.GetState()); diff != "" {
		t.Errorf("State changed by rejected bet (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(players, room.GetPlayers()); diff != "" {
		t.Errorf("Players changed by rejected bet (-before +after):\n%s", diff)
	}
}

func TestFoldSettlesRound(t *testing.T) {
	room, _ := startedRoom(t, "A", "B", "C")

	require.NoError(t, room.Bet("A", 5))
	require.NoError(t, room.Bet("B", 5))
	require.NoError(t, room.Fold("C"))

	state := room.GetState()
	assert.Equal(t, PhaseFlop, state.Phase)
	assert.Equal(t, "A", currentTurn(room))
	assert.Equal(t, 10, state.Pot)
	for _, player := range room.GetPlayers() {
		assert.Equal(t, player.PlayerID == "C", player.HasFolded, "player %s", player.PlayerID)
	}
}

func TestFoldToLastPlayerEndsHand(t *testing.T) {
	room, sink := startedRoom(t, "A", "B")

	require.NoError(t, room.Fold("A"))

	state := room.GetState()
	assert.Equal(t, PhaseEnded, state.Phase)
	assert.Nil(t, state.CurrentTurnPlayerID)
	assert.Empty(t, state.CommunityCards)
	assert.Equal(t, []string{"B"}, state.Winners)
	assert.Equal(t, []EventType{
		EventPlayerJoined, EventPlayerJoined, EventHandStarted, EventPlayerFolded, EventHandEnded,
	}, sink.types())
}

func TestFoldPaysPotToRemainingPlayer(t *testing.T) {
	room, _ := startedRoom(t, "A", "B", "C")

	require.NoError(t, room.Bet("A", 30))
	require.NoError(t, room.Fold("B"))
	require.NoError(t, room.Fold("C"))

	assert.Equal(t, PhaseEnded, room.GetState().Phase)
	assert.Equal(t, map[string]int{"A": 1000, "B": 1000, "C": 1000}, chipsOf(room))
}

func TestRaiseNeedsAnotherLap(t *testing.T) {
	room, _ := startedRoom(t, "A", "B", "C")

	require.NoError(t, room.Bet("A", 10))
	require.NoError(t, room.Bet("B", 20))
	require.NoError(t, room.Bet("C", 20))
	assert.Equal(t, PhaseHoleCardsDealt, room.GetState().Phase)
	assert.Equal(t, "A", currentTurn(room))

	require.NoError(t, room.Bet("A", 10))
	state := room.GetState()
	assert.Equal(t, PhaseFlop, state.Phase)
	assert.Equal(t, 60, state.Pot)
}

func TestPlayerJoiningMidHandMustAct(t *testing.T) {
	room, _ := startedRoom(t, "A", "B")

	require.NoError(t, room.Bet("A", 10))
	room.Join("C", "carol")
	require.NoError(t, room.Bet("B", 10))
	assert.Equal(t, PhaseHoleCardsDealt, room.GetState().Phase)
	assert.Equal(t, "C", currentTurn(room))

	require.NoError(t, room.Bet("C", 10))
	assert.Equal(t, PhaseFlop, room.GetState().Phase)
}

func TestValidationOrder(t *testing.T) {
	room, _ := newTestRoom(t, nil, "A", "B", "C")

	// Phase is checked before seating.
	requireKind(t, room.Bet("X", 10), InvalidPhase)
	requireKind(t, room.Fold("X"), InvalidPhase)

	require.NoError(t, room.StartGame())
	requireKind(t, room.Bet("X", 10), NotSeated)
	requireKind(t, room.Fold("X"), NotSeated)
	requireKind(t, room.Bet("B", -1), NotYourTurn)
	requireKind(t, room.Fold("B"), NotYourTurn)
	requireKind(t, room.Bet("A", -1), InvalidAmount)
	requireKind(t, room.Bet("A", 1001), InsufficientChips)

	require.NoError(t, room.Fold("A"))
	requireKind(t, room.Bet("A", 10), AlreadyFolded)
	requireKind(t, room.Fold("A"), NotYourTurn)

	require.NoError(t, room.Fold("B"))
	assert.Equal(t, PhaseEnded, room.GetState().Phase)
	requireKind(t, room.Bet("C", 10), InvalidPhase)
	requireKind(t, room.Fold("C"), InvalidPhase)
}

func TestRejectedOperationsLeaveRoomUnchanged(t *testing.T) {
	room, sink := startedRoom(t, "A", "B", "C")
	require.NoError(t, room.Bet("A", 10))

	stateBefore := room.GetState()
	playersBefore := room.GetPlayers()
	remainingBefore := room.deck.Remaining()
	eventsBefore := len(sink.events)

	rejected := []func() error{
		func() error { return room.Bet("A", 10) },
		func() error { return room.Bet("B", -5) },
		func() error { return room.Bet("B", 5000) },
		func() error { return room.Bet("X", 10) },
		func() error { return room.Fold("C") },
		func() error { return room.Fold("X") },
	}
	for i, op := range rejected {
		err := op()
		require.Error(t, err, "operation %d", i)
	}

	if diff := cmp.Diff(stateBefore, room.GetState()); diff != "" {
		t.Errorf("State changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(playersBefore, room.GetPlayers()); diff != "" {
		t.Errorf("Players changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, remainingBefore, room.deck.Remaining())
	assert.Equal(t, eventsBefore, len(sink.events))
}

func TestPotEqualsAcceptedBets(t *testing.T) {
	room, _ := startedRoom(t, "A", "B", "C")
	accepted := 0
	bets := []struct {
		playerID string
		amount   int
	}{
		{"A", 10}, {"A", 10}, {"B", 25}, {"C", -1}, {"C", 25}, {"A", 15},
		{"B", 0}, {"C", 5}, {"C", 0}, {"A", 5}, {"B", 5}, {"C", 5},
	}
	for _, bet := range bets {
		if err := room.Bet(bet.playerID, bet.amount); err == nil {
			accepted += bet.amount
		}
		assert.Equal(t, accepted, room.GetState().Pot)
	}
	total := 0
	for _, chips := range chipsOf(room) {
		total += chips
	}
	if room.GetState().Phase != PhaseEnded {
		total += room.GetState().Pot
	}
	assert.Equal(t, 3000, total)
}

func TestRestartRefundsCommittedChips(t *testing.T) {
	room, sink := startedRoom(t, "A", "B")
	firstHand := room.GetState().HandID

	require.NoError(t, room.Bet("A", 50))
	require.NoError(t, room.StartGame())

	state := room.GetState()
	assert.Equal(t, PhaseHoleCardsDealt, state.Phase)
	assert.Equal(t, 0, state.Pot)
	assert.Equal(t, uint32(2), state.HandNum)
	assert.NotEqual(t, firstHand, state.HandID)
	assert.Equal(t, "A", currentTurn(room))
	assert.Equal(t, map[string]int{"A": 1000, "B": 1000}, chipsOf(room))
	assert.Equal(t, EventHandStarted, sink.events[len(sink.events)-1].Type)
}

func TestNextHandAfterEnd(t *testing.T) {
	room, _ := startedRoom(t, "A", "B")
	require.NoError(t, room.Bet("A", 100))
	require.NoError(t, room.Fold("B"))
	assert.Equal(t, map[string]int{"A": 1000, "B": 1000}, chipsOf(room))

	require.NoError(t, room.StartGame())
	for _, player := range room.GetPlayers() {
		assert.False(t, player.HasFolded)
	}
	require.NoError(t, room.Bet("A", 10))
	assert.Equal(t, 10, room.GetState().Pot)
}

func TestEvaluatorSplitsPot(t *testing.T) {
	evaluator := EvaluatorFunc(func(active []string, board []poker.Card) []string {
		return []string{"C", "A"}
	})
	room, _ := newTestRoom(t, evaluator, "A", "B", "C")
	require.NoError(t, room.StartGame())

	for _, playerID := range []string{"A", "B", "C"} {
		require.NoError(t, room.Bet(playerID, 11))
	}
	for street := 0; street < 3; street++ {
		for _, playerID := range []string{"A", "B", "C"} {
			require.NoError(t, room.Bet(playerID, 0))
		}
	}

	state := room.GetState()
	assert.Equal(t, PhaseEnded, state.Phase)
	assert.Equal(t, []string{"A", "C"}, state.Winners)
	assert.Equal(t, map[string]int{"A": 1006, "B": 989, "C": 1005}, chipsOf(room))
}

func TestEvaluatorReceivesActivePlayersAndBoard(t *testing.T) {
	var gotActive []string
	var gotBoard []poker.Card
	evaluator := EvaluatorFunc(func(active []string, board []poker.Card) []string {
		gotActive = active
		gotBoard = board
		return []string{active[len(active)-1]}
	})
	room, _ := newTestRoom(t, evaluator, "A", "B", "C")
	require.NoError(t, room.StartGame())

	require.NoError(t, room.Fold("A"))
	require.NoError(t, room.Bet("B", 0))
	require.NoError(t, room.Bet("C", 0))
	for street := 0; street < 3; street++ {
		require.NoError(t, room.Bet("B", 0))
		require.NoError(t, room.Bet("C", 0))
	}

	assert.Equal(t, []string{"B", "C"}, gotActive)
	assert.Len(t, gotBoard, 5)
	assert.Equal(t, []string{"C"}, room.GetState().Winners)
}

func TestEvaluatorWithoutSeatedWinnerRefunds(t *testing.T) {
	evaluator := EvaluatorFunc(func(active []string, board []poker.Card) []string {
		return []string{"ghost"}
	})
	room, _ := newTestRoom(t, evaluator, "A", "B")
	require.NoError(t, room.StartGame())
	require.NoError(t, room.Bet("A", 40))
	require.NoError(t, room.Fold("B"))

	state := room.GetState()
	assert.Equal(t, PhaseEnded, state.Phase)
	assert.Empty(t, state.Winners)
	assert.Equal(t, map[string]int{"A": 1000, "B": 1000}, chipsOf(room))
}

func TestDeckExhaustedIsRejectedBeforeMutation(t *testing.T) {
	room, _ := startedRoom(t, "A", "B")
	require.NoError(t, room.Bet("A", 10))
	_, err := room.deck.DrawN(49)
	require.NoError(t, err)

	requireKind(t, room.Bet("B", 10), DeckExhausted)
	assert.Equal(t, 10, room.GetState().Pot)
	assert.Equal(t, "B", currentTurn(room))
	assert.Equal(t, 3, room.deck.Remaining())

	// A bet that does not settle the round needs no cards.
	require.NoError(t, room.Bet("B", 20))
	assert.Equal(t, PhaseHoleCardsDealt, room.GetState().Phase)
}

func TestSnapshotsAreCopies(t *testing.T) {
	room, _ := startedRoom(t, "A", "B")
	require.NoError(t, room.Bet("A", 10))
	require.NoError(t, room.Bet("B", 10))

	state := room.GetState()
	state.CommunityCards[0] = "XX"
	*state.CurrentTurnPlayerID = "B"
	players := room.GetPlayers()
	players[0].Chips = 0

	fresh := room.GetState()
	assert.NotEqual(t, "XX", fresh.CommunityCards[0])
	assert.Equal(t, "A", currentTurn(room))
	assert.Equal(t, 990, room.GetPlayers()[0].Chips)
}

func TestEventsCarryRoomAndHand(t *testing.T) {
	room, sink := startedRoom(t, "A", "B")
	require.NoError(t, room.Bet("A", 10))

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, EventBetAccepted, last.Type)
	assert.Equal(t, "room-1", last.RoomID)
	assert.Equal(t, room.GetState().HandID, last.HandID)
	assert.Equal(t, "A", last.PlayerID)
	assert.Equal(t, 10, last.Amount)
	assert.Equal(t, 10, last.Pot)
	assert.False(t, last.At.IsZero())
}
