package game

import (
	"holdem.io/server/poker"
)

// ShowdownEvaluator decides who wins a hand. activePlayerIDs is in roster
// order and is never empty when called by a room that still has players.
type ShowdownEvaluator interface {
	EvaluateShowdown(activePlayerIDs []string, communityCards []poker.Card) []string
}

// EvaluatorFunc adapts a plain function to ShowdownEvaluator.
type EvaluatorFunc func(activePlayerIDs []string, communityCards []poker.Card) []string

func (f EvaluatorFunc) EvaluateShowdown(activePlayerIDs []string, communityCards []poker.Card) []string {
	return f(activePlayerIDs, communityCards)
}

// FirstActiveEvaluator is the placeholder used until hand ranking is plugged
// in: the earliest seated player still in the hand wins.
type FirstActiveEvaluator struct{}

func (FirstActiveEvaluator) EvaluateShowdown(activePlayerIDs []string, communityCards []poker.Card) []string {
	if len(activePlayerIDs) == 0 {
		return []string{}
	}
	return []string{activePlayerIDs[0]}
}
