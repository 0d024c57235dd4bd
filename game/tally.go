// game/tally.go
package game

import "sort"

// tallyVotes counts votes per target and sorts descending by count.
// Ties keep first-encountered order of the vote log (stable sort), which
// is deterministic but deliberately not "fair".
func tallyVotes(votes []Vote) []VoteCount {
	counts := make(map[string]int)
	var order []string
	for _, v := range votes {
		if _, seen := counts[v.VotedForName]; !seen {
			order = append(order, v.VotedForName)
		}
		counts[v.VotedForName]++
	}

	tally := make([]VoteCount, 0, len(order))
	for _, name := range order {
		tally = append(tally, VoteCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].Count > tally[j].Count
	})
	return tally
}

// votingOrderFor lists human players in roster order, then bot players
// in roster order. Bots always vote last, so humans never see bot
// reasoning before committing their own vote.
func votingOrderFor(players []GamePlayer) []string {
	order := make([]string, 0, len(players))
	for _, p := range players {
		if !p.IsBot {
			order = append(order, p.Name)
		}
	}
	for _, p := range players {
		if p.IsBot {
			order = append(order, p.Name)
		}
	}
	return order
}
