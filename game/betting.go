package game

// BettingRound tracks what each player has put in during the current street.
type BettingRound struct {
	contributions map[string]int
}

func NewBettingRound() *BettingRound {
	return &BettingRound{contributions: make(map[string]int)}
}

func (b *BettingRound) Contribute(playerID string, amount int) {
	b.contributions[playerID] += amount
}

func (b *BettingRound) Contribution(playerID string) (int, bool) {
	amount, ok := b.contributions[playerID]
	return amount, ok
}

func (b *BettingRound) Reset() {
	b.contributions = make(map[string]int)
}

// Settled is true when no one is active, or every active player has acted
// and all active contributions match the highest one.
func (b *BettingRound) Settled(active []string) bool {
	return settled(active, b.Contribution)
}

// SettledAfter answers Settled as if playerID had contributed amount more,
// without recording it.
func (b *BettingRound) SettledAfter(active []string, playerID string, amount int) bool {
	return settled(active, func(id string) (int, bool) {
		current, ok := b.contributions[id]
		if id == playerID {
			return current + amount, true
		}
		return current, ok
	})
}

func settled(active []string, contribution func(string) (int, bool)) bool {
	if len(active) == 0 {
		return true
	}
	max := 0
	amounts := make([]int, 0, len(active))
	for _, playerID := range active {
		amount, ok := contribution(playerID)
		if !ok {
			return false
		}
		if amount > max {
			max = amount
		}
		amounts = append(amounts, amount)
	}
	for _, amount := range amounts {
		if amount != max {
			return false
		}
	}
	return true
}
