// game/types.go
package game

import (
	"fmt"

	"github.com/jetchart/impostor/words"
)

// Player is the immutable identity built during setup.
type Player struct {
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

// GamePlayer is a Player plus the attributes rolled at game start.
// Word and Hint are the shared secret, identical for every player.
type GamePlayer struct {
	Player
	IsImpostor  bool   `json:"isImpostor"`
	Word        string `json:"word"`
	Hint        string `json:"hint"`
	HasSeenWord bool   `json:"hasSeenWord"`
}

// Description is one transcript entry, append-only.
type Description struct {
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	Round      int    `json:"round"`
}

// Vote is one ballot, append-only, at most one per player per game.
type Vote struct {
	VoterName    string `json:"voterName"`
	VotedForName string `json:"votedForName"`
	IsBot        bool   `json:"isBot"`
}

// Config is the setup handoff, parsed once from the device's setup
// message and passed by value into the engine.
type Config struct {
	Players            []Player         `json:"players"`
	ImpostorCount      int              `json:"impostorCount"`
	SelectedCategories []string         `json:"selectedCategories"`
	Difficulty         words.Difficulty `json:"difficulty"`
	AllowImpostorHint  bool             `json:"allowImpostorHint"`
}

const (
	MinPlayers = 3
	MaxPlayers = 20
)

// Validate enforces the setup preconditions. An invalid configuration is
// the only unrecoverable input; everything after this is transient.
func (c Config) Validate() error {
	if len(c.Players) < MinPlayers {
		return fmt.Errorf("%w: need at least %d players, got %d", ErrInvalidConfig, MinPlayers, len(c.Players))
	}
	if len(c.Players) > MaxPlayers {
		return fmt.Errorf("%w: at most %d players, got %d", ErrInvalidConfig, MaxPlayers, len(c.Players))
	}
	if c.ImpostorCount < 1 || c.ImpostorCount > len(c.Players)-1 {
		return fmt.Errorf("%w: impostor count %d out of range [1, %d]", ErrInvalidConfig, c.ImpostorCount, len(c.Players)-1)
	}
	seen := make(map[string]struct{}, len(c.Players))
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("%w: empty player name", ErrInvalidConfig)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: duplicate player name %q", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// State is the aggregate game state. It is owned by the engine and only
// leaves it as a copy (Snapshot).
type State struct {
	Phase               Phase            `json:"phase"`
	Players             []GamePlayer     `json:"players"`
	TurnOrder           []int            `json:"turnOrder"`
	CurrentTurnPosition int              `json:"currentTurnPosition"`
	CurrentRound        int              `json:"currentRound"`
	Descriptions        []Description    `json:"descriptions"`
	Votes               []Vote           `json:"votes"`
	VotingOrder         []string         `json:"votingOrder,omitempty"`
	CurrentVoterIndex   int              `json:"currentVoterIndex"`
	Word                string           `json:"word"`
	Hint                string           `json:"hint"`
	Difficulty          words.Difficulty `json:"difficulty"`
	Muted               bool             `json:"muted"`
	AllowImpostorHint   bool             `json:"allowImpostorHint"`
}

// Snapshot is a copy of the state for rendering, plus whether the engine
// is mid-pipeline (narrating or running a bot turn).
type Snapshot struct {
	GameID string `json:"gameId"`
	State
	Busy bool `json:"busy"`
}

// VoteCount is one tally row, ordered by descending count.
type VoteCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Result is the voting outcome shown once the game is finished.
type Result struct {
	Tally          []VoteCount `json:"tally"`
	Accused        string      `json:"accused"`
	ImpostorCaught bool        `json:"impostorCaught"`
}
