// game/roster_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/jetchart/impostor/words"
)

func TestAssignRoles(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	players := []Player{
		{Name: "Ana"},
		{Name: "Beto", IsBot: true},
		{Name: "Carla"},
		{Name: "Dani", IsBot: true},
	}
	w := words.Word{Text: "GUITARRA", Hint: "Instrumento"}

	for trial := 0; trial < 50; trial++ {
		got := assignRoles(rng, players, 2, w)
		if len(got) != len(players) {
			t.Fatalf("got %d players, want %d", len(got), len(players))
		}
		impostors := 0
		for i, gp := range got {
			if gp.Name != players[i].Name {
				t.Fatalf("roster order changed: %q at %d", gp.Name, i)
			}
			if gp.Word != "GUITARRA" || gp.Hint != "Instrumento" {
				t.Fatalf("player %q missing shared secret", gp.Name)
			}
			if gp.IsBot != gp.HasSeenWord {
				t.Fatalf("player %q: bots and only bots start with the word seen", gp.Name)
			}
			if gp.IsImpostor {
				impostors++
			}
		}
		if impostors != 2 {
			t.Fatalf("got %d impostors, want 2", impostors)
		}
	}
}

func TestShuffleOrderIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		order := shuffleOrder(rng, 6)
		seen := make(map[int]bool, 6)
		for _, idx := range order {
			if idx < 0 || idx >= 6 || seen[idx] {
				t.Fatalf("not a permutation: %v", order)
			}
			seen[idx] = true
		}
		if len(seen) != 6 {
			t.Fatalf("not a permutation: %v", order)
		}
	}
}

func TestAllBots(t *testing.T) {
	if allBots([]Player{{Name: "a", IsBot: true}, {Name: "b"}}) {
		t.Error("mixed roster reported as all bots")
	}
	if !allBots([]Player{{Name: "a", IsBot: true}, {Name: "b", IsBot: true}}) {
		t.Error("all-bot roster not detected")
	}
}
