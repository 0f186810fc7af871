package game

// NextActive returns the first player after current, in circular roster
// order, who has not folded. The scan starts at the beginning of the roster
// when current is not seated. A full lap without a candidate is a
// NoActivePlayers error.
func NextActive(order []string, folded map[string]bool, current string) (string, error) {
	start := -1
	for i, playerID := range order {
		if playerID == current {
			start = i
			break
		}
	}

	n := len(order)
	for i := 1; i <= n; i++ {
		candidate := order[(start+i+n)%n]
		if !folded[candidate] {
			return candidate, nil
		}
	}
	return "", newRoomError(NoActivePlayers, "no player left to act")
}

// FirstActive returns the earliest seated player who has not folded.
func FirstActive(order []string, folded map[string]bool) (string, error) {
	for _, playerID := range order {
		if !folded[playerID] {
			return playerID, nil
		}
	}
	return "", newRoomError(NoActivePlayers, "no player left to act")
}

func activePlayers(order []string, folded map[string]bool) []string {
	active := make([]string, 0, len(order))
	for _, playerID := range order {
		if !folded[playerID] {
			active = append(active, playerID)
		}
	}
	return active
}
