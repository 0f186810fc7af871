package poker

import (
	"errors"
	"math/rand"
)

var ErrDeckExhausted = errors.New("deck exhausted")

var fullDeck []Card

func init() {
	fullDeck = initializeFullCards()
}

// Deck is the per-hand card stack. Cards are drawn from the front.
type Deck struct {
	cards  []Card
	burned []Card
}

// NewDeck returns the 52 cards in rank-major order (2C 2D 2H 2S 3C ... AS).
func NewDeck() *Deck {
	deck := &Deck{}
	deck.cards = make([]Card, len(fullDeck))
	copy(deck.cards, fullDeck)
	return deck
}

// NewShuffledDeck builds a fresh deck and shuffles it with randGen.
func NewShuffledDeck(randGen *rand.Rand) *Deck {
	deck := NewDeck()
	deck.Shuffle(randGen)
	return deck
}

// Shuffle is a backward Fisher-Yates pass over the remaining cards.
func (deck *Deck) Shuffle(randGen *rand.Rand) *Deck {
	for i := len(deck.cards) - 1; i > 0; i-- {
		j := randGen.Intn(i + 1)
		deck.cards[i], deck.cards[j] = deck.cards[j], deck.cards[i]
	}
	return deck
}

func (deck *Deck) Draw() (Card, error) {
	if len(deck.cards) == 0 {
		return 0, ErrDeckExhausted
	}
	card := deck.cards[0]
	deck.cards = deck.cards[1:]
	return card, nil
}

// DrawN draws n cards or none at all.
func (deck *Deck) DrawN(n int) ([]Card, error) {
	if n > len(deck.cards) {
		return nil, ErrDeckExhausted
	}
	cards := make([]Card, n)
	copy(cards, deck.cards[:n])
	deck.cards = deck.cards[n:]
	return cards, nil
}

// Burn discards the top card face down.
func (deck *Deck) Burn() error {
	card, err := deck.Draw()
	if err != nil {
		return err
	}
	deck.burned = append(deck.burned, card)
	return nil
}

func (deck *Deck) Remaining() int {
	return len(deck.cards)
}

func (deck *Deck) Empty() bool {
	return len(deck.cards) == 0
}

func (deck *Deck) Cards() []Card {
	cards := make([]Card, len(deck.cards))
	copy(cards, deck.cards)
	return cards
}

func (deck *Deck) Burned() []Card {
	cards := make([]Card, len(deck.burned))
	copy(cards, deck.burned)
	return cards
}

func initializeFullCards() []Card {
	cards := make([]Card, 0, NumCards)
	for rank := range strRanks {
		for suit := range strSuits {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}
