// game/roster.go
package game

import (
	"math/rand"

	"github.com/jetchart/impostor/words"
)

// assignRoles rolls a fresh set of game players from the roster: the
// shared secret, impostor assignment, and the reveal bookkeeping. Bots
// never reveal, so they start with the word already seen.
func assignRoles(rng *rand.Rand, players []Player, impostorCount int, w words.Word) []GamePlayer {
	impostors := pickImpostors(rng, len(players), impostorCount)

	out := make([]GamePlayer, len(players))
	for i, p := range players {
		_, isImpostor := impostors[i]
		out[i] = GamePlayer{
			Player:      p,
			IsImpostor:  isImpostor,
			Word:        w.Text,
			Hint:        w.Hint,
			HasSeenWord: p.IsBot,
		}
	}
	return out
}

// pickImpostors samples distinct indices uniformly, retrying collisions
// until the set holds exactly count entries. Terminates for any
// count <= playerCount.
func pickImpostors(rng *rand.Rand, playerCount, count int) map[int]struct{} {
	impostors := make(map[int]struct{}, count)
	for len(impostors) < count {
		impostors[rng.Intn(playerCount)] = struct{}{}
	}
	return impostors
}

// shuffleOrder returns a fresh random permutation of player indices,
// Fisher-Yates.
func shuffleOrder(rng *rand.Rand, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

func allBots(players []Player) bool {
	for _, p := range players {
		if !p.IsBot {
			return false
		}
	}
	return true
}
