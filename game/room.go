package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"holdem.io/server/logging"
	"holdem.io/server/poker"
	"holdem.io/server/util/random"
)

var roomLogger = log.With().Str("logger_name", "game::room").Logger()

// Room is one table and the hand being played on it. A Room is not safe for
// concurrent use; it is owned by a single goroutine (see roomActor).
//
// Every operation validates before it mutates, so a rejected operation leaves
// the room exactly as it was.
type Room struct {
	id        string
	config    RoomConfig
	evaluator ShowdownEvaluator
	sink      EventSink
	randGen   *rand.Rand

	players []*Player
	seated  map[string]*Player

	phase          Phase
	handID         string
	handNum        uint32
	pot            int
	communityCards []poker.Card
	currentTurn    *Player
	deck           *poker.Deck
	round          *BettingRound
	folded         map[string]bool
	committed      map[string]int
	lastResult     *HandResult
}

func NewRoom(roomID string, config RoomConfig, evaluator ShowdownEvaluator, sink EventSink) *Room {
	if config.MinPlayers < DefaultMinPlayers {
		config.MinPlayers = DefaultMinPlayers
	}
	if evaluator == nil {
		evaluator = FirstActiveEvaluator{}
	}
	if sink == nil {
		sink = nopSink{}
	}
	seed := config.Seed
	if seed == 0 {
		seed = random.NewSeed()
	}
	return &Room{
		id:        roomID,
		config:    config,
		evaluator: evaluator,
		sink:      sink,
		randGen:   rand.New(rand.NewSource(seed)),
		seated:    make(map[string]*Player),
		phase:     PhaseNotStarted,
		round:     NewBettingRound(),
		folded:    make(map[string]bool),
		committed: make(map[string]int),
	}
}

func (r *Room) ID() string {
	return r.id
}

// Join seats a player with the starting stack. Joining twice is a no-op.
func (r *Room) Join(playerID string, nickname string) {
	if _, ok := r.seated[playerID]; ok {
		return
	}
	player := &Player{
		ID:       playerID,
		Nickname: nickname,
		Chips:    r.config.StartingChips,
	}
	r.players = append(r.players, player)
	r.seated[playerID] = player
	r.publish(Event{
		Type:     EventPlayerJoined,
		PlayerID: playerID,
		Nickname: nickname,
	})
}

func (r *Room) GetPlayers() []PlayerState {
	players := make([]PlayerState, len(r.players))
	for i, player := range r.players {
		players[i] = PlayerState{
			PlayerID:  player.ID,
			Nickname:  player.Nickname,
			Chips:     player.Chips,
			HasFolded: r.folded[player.ID],
		}
	}
	return players
}

func (r *Room) GetState() GameState {
	state := GameState{
		RoomID:         r.id,
		HandID:         r.handID,
		HandNum:        r.handNum,
		CommunityCards: poker.CardsToStrings(r.communityCards),
		Pot:            r.pot,
		Phase:          r.phase,
	}
	if r.currentTurn != nil {
		playerID := r.currentTurn.ID
		state.CurrentTurnPlayerID = &playerID
	}
	if r.lastResult != nil {
		state.Winners = append([]string{}, r.lastResult.Winners...)
	}
	return state
}

// LastResult returns a copy of how the most recent hand was settled.
func (r *Room) LastResult() (HandResult, bool) {
	if r.lastResult == nil {
		return HandResult{}, false
	}
	result := *r.lastResult
	result.Winners = append([]string{}, r.lastResult.Winners...)
	result.CommunityCards = append([]string{}, r.lastResult.CommunityCards...)
	result.Payouts = make(map[string]int, len(r.lastResult.Payouts))
	for playerID, amount := range r.lastResult.Payouts {
		result.Payouts[playerID] = amount
	}
	return result, true
}

// StartGame begins a new hand. A hand still being played is abandoned and
// the chips committed to it go back to their owners.
func (r *Room) StartGame() error {
	if len(r.players) < r.config.MinPlayers {
		return newRoomError(InsufficientPlayers, "%d seated, %d required", len(r.players), r.config.MinPlayers)
	}
	if r.phase.IsBetting() {
		r.refundCommitted()
	}

	r.handNum++
	r.handID = uuid.New().String()
	r.pot = 0
	r.communityCards = nil
	r.round.Reset()
	r.folded = make(map[string]bool)
	r.committed = make(map[string]int)
	r.deck = poker.NewShuffledDeck(r.randGen)
	r.phase = PhaseHoleCardsDealt
	r.currentTurn = r.players[0]

	r.publish(Event{
		Type:    EventHandStarted,
		Players: r.order(),
	})
	return nil
}

func (r *Room) Bet(playerID string, amount int) error {
	if !r.phase.IsBetting() {
		return newRoomError(InvalidPhase, "cannot bet in phase %s", r.phase)
	}
	player, ok := r.seated[playerID]
	if !ok {
		return newRoomError(NotSeated, "player %s is not seated", playerID)
	}
	if r.folded[playerID] {
		return newRoomError(AlreadyFolded, "player %s has folded", playerID)
	}
	if !r.isTurnOf(playerID) {
		return newRoomError(NotYourTurn, "player %s is not to act", playerID)
	}
	if amount < 0 {
		return newRoomError(InvalidAmount, "amount %d is negative", amount)
	}
	if amount > player.Chips {
		return newRoomError(InsufficientChips, "amount %d exceeds stack %d", amount, player.Chips)
	}
	if r.round.SettledAfter(r.activePlayers(), playerID, amount) {
		if err := r.checkDeckForNextStreet(); err != nil {
			return err
		}
	}

	r.round.Contribute(playerID, amount)
	r.pot += amount
	r.committed[playerID] += amount
	player.Chips -= amount
	r.publish(Event{
		Type:     EventBetAccepted,
		PlayerID: playerID,
		Amount:   amount,
	})

	return r.afterAction(playerID)
}

func (r *Room) Fold(playerID string) error {
	if r.phase == PhaseNotStarted || r.phase == PhaseShowdown || r.phase == PhaseEnded {
		return newRoomError(InvalidPhase, "cannot fold in phase %s", r.phase)
	}
	if _, ok := r.seated[playerID]; !ok {
		return newRoomError(NotSeated, "player %s is not seated", playerID)
	}
	if !r.isTurnOf(playerID) {
		return newRoomError(NotYourTurn, "player %s is not to act", playerID)
	}
	remaining := make([]string, 0, len(r.players))
	for _, activeID := range r.activePlayers() {
		if activeID != playerID {
			remaining = append(remaining, activeID)
		}
	}
	if len(remaining) > 1 && r.round.Settled(remaining) {
		if err := r.checkDeckForNextStreet(); err != nil {
			return err
		}
	}

	r.folded[playerID] = true
	r.publish(Event{
		Type:     EventPlayerFolded,
		PlayerID: playerID,
	})

	if len(remaining) == 1 {
		r.finishHand(remaining)
		return nil
	}
	return r.afterAction(playerID)
}

// afterAction passes the turn on and moves to the next street once the
// betting round is settled.
func (r *Room) afterAction(actorID string) error {
	nextID, err := NextActive(r.order(), r.folded, actorID)
	if err != nil {
		r.abandonHand(err)
		return nil
	}
	r.currentTurn = r.seated[nextID]

	if !r.round.Settled(r.activePlayers()) {
		return nil
	}
	return r.advancePhase()
}

func (r *Room) advancePhase() error {
	if !r.phase.IsBetting() {
		return UnexpectedPhaseError{Phase: r.phase}
	}
	next, reveal := r.phase.next()
	if next == PhaseShowdown {
		r.phase = PhaseShowdown
		r.currentTurn = nil
		r.publish(Event{Type: EventPhaseAdvanced})
		r.finishHand(r.activePlayers())
		return nil
	}

	if err := r.deck.Burn(); err != nil {
		return newRoomError(DeckExhausted, "burn before %s: %v", next, err)
	}
	cards, err := r.deck.DrawN(reveal)
	if err != nil {
		return newRoomError(DeckExhausted, "reveal %d cards for %s: %v", reveal, next, err)
	}
	r.communityCards = append(r.communityCards, cards...)
	r.round.Reset()
	r.phase = next

	firstID, err := FirstActive(r.order(), r.folded)
	if err != nil {
		r.abandonHand(err)
		return nil
	}
	r.currentTurn = r.seated[firstID]
	r.publish(Event{Type: EventPhaseAdvanced})
	return nil
}

// finishHand asks the evaluator for the winners of the remaining players and
// pays out the pot.
func (r *Room) finishHand(active []string) {
	candidates := append([]string{}, active...)
	board := append([]poker.Card{}, r.communityCards...)
	returned := r.evaluator.EvaluateShowdown(candidates, board)

	isActive := make(map[string]bool, len(active))
	for _, playerID := range active {
		isActive[playerID] = true
	}
	winners := make([]string, 0, len(returned))
	for _, playerID := range r.order() {
		for _, winnerID := range returned {
			if winnerID == playerID && isActive[playerID] {
				winners = append(winners, playerID)
				break
			}
		}
	}

	payouts := splitPot(r.pot, winners)
	if len(winners) == 0 {
		roomLogger.Warn().
			Str(logging.RoomIDKey, r.id).
			Str(logging.HandIDKey, r.handID).
			Msgf("Evaluator returned no seated winner from %v. Returning committed chips.", returned)
		r.refundCommitted()
	}
	for playerID, amount := range payouts {
		r.seated[playerID].Chips += amount
	}
	r.committed = make(map[string]int)
	r.phase = PhaseEnded
	r.currentTurn = nil
	r.lastResult = &HandResult{
		HandID:         r.handID,
		HandNum:        r.handNum,
		Winners:        winners,
		Payouts:        payouts,
		Pot:            r.pot,
		CommunityCards: poker.CardsToStrings(r.communityCards),
	}
	r.publish(Event{
		Type:    EventHandEnded,
		Winners: append([]string{}, winners...),
		Payouts: copyPayouts(payouts),
	})
}

// abandonHand ends a hand that has no one left to act.
func (r *Room) abandonHand(cause error) {
	roomLogger.Error().
		Str(logging.RoomIDKey, r.id).
		Str(logging.HandIDKey, r.handID).
		Str(logging.PhaseKey, r.phase.String()).
		Msgf("Ending hand without a winner: %v", cause)
	r.refundCommitted()
	r.committed = make(map[string]int)
	r.phase = PhaseEnded
	r.currentTurn = nil
	r.lastResult = &HandResult{
		HandID:         r.handID,
		HandNum:        r.handNum,
		Winners:        []string{},
		Payouts:        map[string]int{},
		Pot:            r.pot,
		CommunityCards: poker.CardsToStrings(r.communityCards),
	}
	r.publish(Event{Type: EventHandEnded})
}

func (r *Room) refundCommitted() {
	for playerID, amount := range r.committed {
		if player, ok := r.seated[playerID]; ok {
			player.Chips += amount
		}
	}
}

func (r *Room) checkDeckForNextStreet() error {
	next, reveal := r.phase.next()
	if next == PhaseShowdown {
		return nil
	}
	if r.deck.Remaining() < reveal+1 {
		return newRoomError(DeckExhausted, "%d cards left, %d needed for %s", r.deck.Remaining(), reveal+1, next)
	}
	return nil
}

func (r *Room) isTurnOf(playerID string) bool {
	return r.currentTurn != nil && r.currentTurn.ID == playerID
}

func (r *Room) order() []string {
	order := make([]string, len(r.players))
	for i, player := range r.players {
		order[i] = player.ID
	}
	return order
}

func (r *Room) activePlayers() []string {
	return activePlayers(r.order(), r.folded)
}

func (r *Room) publish(event Event) {
	event.RoomID = r.id
	event.HandID = r.handID
	event.HandNum = r.handNum
	event.Pot = r.pot
	event.Phase = r.phase
	if event.Type == EventPhaseAdvanced || event.Type == EventHandEnded {
		event.CommunityCards = poker.CardsToStrings(r.communityCards)
	}
	event.At = time.Now().UTC()
	r.sink.Publish(event)
}

func copyPayouts(payouts map[string]int) map[string]int {
	c := make(map[string]int, len(payouts))
	for playerID, amount := range payouts {
		c[playerID] = amount
	}
	return c
}
