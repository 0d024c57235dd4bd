// game/errors.go
package game

import "errors"

// Precondition violations. All of these are transient: the engine rejects
// the action without mutating state and the device shows a notice.
var (
	ErrInvalidConfig        = errors.New("game: invalid configuration")
	ErrWrongPhase           = errors.New("game: action not valid in current phase")
	ErrNotYourTurn          = errors.New("game: not this player's turn")
	ErrEmptyDescription     = errors.New("game: description must not be empty")
	ErrDuplicateDescription = errors.New("game: description was already used this game")
	ErrNotYourVote          = errors.New("game: not this player's turn to vote")
	ErrSelfVote             = errors.New("game: players cannot vote for themselves")
	ErrUnknownPlayer        = errors.New("game: no such player")
	ErrVotingNotReady       = errors.New("game: voting requires every player to have spoken this round")
	ErrEngineBusy           = errors.New("game: engine is processing a turn, try again")
)
