package poker

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Card packs the rank in bits 4-7 and the suit in bits 0-3.
// ranks 0000: 2 ... 1100: A
// suits 0000: Club, 0001: Diamond, 0010: Heart, 0011: Spade
type Card int32

const (
	strRanks = "23456789TJQKA"
	strSuits = "CDHS"
)

const NumCards = len(strRanks) * len(strSuits)

func NewCard(rank int, suit int) Card {
	return Card(int32(rank)<<4 | int32(suit))
}

// ParseCard converts a two character token such as "AS" or "tc" to a card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("Invalid card token [%s]", s)
	}
	token := strings.ToUpper(s)
	rank := strings.IndexByte(strRanks, token[0])
	suit := strings.IndexByte(strSuits, token[1])
	if rank < 0 || suit < 0 {
		return 0, fmt.Errorf("Invalid card token [%s]", s)
	}
	return NewCard(rank, suit), nil
}

func (c Card) Rank() int {
	return int(c >> 4)
}

func (c Card) Suit() int {
	return int(c & 0x0F)
}

func (c Card) Valid() bool {
	return c >= 0 && c.Rank() < len(strRanks) && c.Suit() < len(strSuits)
}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{strRanks[c.Rank()], strSuits[c.Suit()]})
}

func (c Card) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var token string
	if err := jsoniter.Unmarshal(data, &token); err != nil {
		return err
	}
	card, err := ParseCard(token)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

func CardsToStrings(cards []Card) []string {
	tokens := make([]string, len(cards))
	for i, card := range cards {
		tokens[i] = card.String()
	}
	return tokens
}
