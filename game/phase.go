// game/phase.go
package game

import "errors"

// Phase is the lifecycle position of a game.
type Phase string

const (
	PhaseReveal       Phase = "reveal"        // players privately view role and word
	PhasePlaying      Phase = "playing"       // one-word descriptions, turn by turn
	PhaseVoting       Phase = "voting"        // everyone votes for the suspected impostor
	PhaseFinished     Phase = "finished"      // votes tallied, outcome announced
	PhaseImpostorWins Phase = "impostor-wins" // an impostor said the secret word
)

// ErrTransitionNotAllowed is returned when a phase transition is not allowed.
var ErrTransitionNotAllowed = errors.New("game: phase transition not allowed")

var phaseTransitions = map[Phase][]Phase{
	PhaseReveal:  {PhasePlaying},
	PhasePlaying: {PhaseVoting, PhaseImpostorWins},
	PhaseVoting:  {PhaseFinished},
	// finished and impostor-wins are terminal; the only exit is a full
	// reset, which rebuilds the state rather than transitioning.
	PhaseFinished:     {},
	PhaseImpostorWins: {},
}

func (p Phase) String() string {
	return string(p)
}

// Terminal reports whether the phase ends the game.
func (p Phase) Terminal() bool {
	return p == PhaseFinished || p == PhaseImpostorWins
}

// CanTransitionTo checks the transition table.
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, allowed := range phaseTransitions[p] {
		if allowed == target {
			return true
		}
	}
	return false
}
