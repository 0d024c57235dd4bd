// game/phase_test.go
package game

import "testing"

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from, to Phase
		allowed  bool
	}{
		{PhaseReveal, PhasePlaying, true},
		{PhaseReveal, PhaseVoting, false},
		{PhaseReveal, PhaseFinished, false},
		{PhasePlaying, PhaseVoting, true},
		{PhasePlaying, PhaseImpostorWins, true},
		{PhasePlaying, PhaseFinished, false},
		{PhasePlaying, PhaseReveal, false},
		{PhaseVoting, PhaseFinished, true},
		{PhaseVoting, PhasePlaying, false},
		{PhaseFinished, PhasePlaying, false},
		{PhaseFinished, PhaseReveal, false},
		{PhaseImpostorWins, PhaseVoting, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestTerminalPhases(t *testing.T) {
	if !PhaseFinished.Terminal() {
		t.Error("finished should be terminal")
	}
	if !PhaseImpostorWins.Terminal() {
		t.Error("impostor-wins should be terminal")
	}
	if PhasePlaying.Terminal() {
		t.Error("playing should not be terminal")
	}
	if PhaseReveal.Terminal() {
		t.Error("reveal should not be terminal")
	}
}
