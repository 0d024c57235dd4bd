// game/interfaces.go
package game

import (
	"context"
	"time"

	"github.com/jetchart/impostor/words"
)

// Narrator voices announcements on the shared device. Announce blocks
// until playback ends and must resolve within a bounded time even if the
// speech engine hangs or fails; gameplay never blocks on narration.
type Narrator interface {
	Announce(ctx context.Context, text string) error
	SetMuted(muted bool)
	Cancel()
}

// Clock paces the turn loop. Sleep returns early when ctx is canceled.
// Tests substitute an instant clock.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration)
}

// DescribeRequest asks the suggestion service for a bot's one-word
// description.
type DescribeRequest struct {
	Word                 string
	Hint                 string
	IsImpostor           bool
	PreviousDescriptions []string
	Difficulty           words.Difficulty
}

// VoteRequest asks the suggestion service who a bot should vote for.
type VoteRequest struct {
	Players         []string
	Descriptions    []Description
	VoterName       string
	VoterIsImpostor bool
	Word            string
}

// DeduceRequest asks the suggestion service to guess the secret word
// from the transcript, on behalf of an impostor bot.
type DeduceRequest struct {
	Hint                 string
	PreviousDescriptions []string
}

// Suggester generates bot descriptions and votes. Every method may fail;
// the engine falls back to a deterministic local choice so the game
// always progresses.
type Suggester interface {
	SuggestDescription(ctx context.Context, req DescribeRequest) (string, error)
	SuggestVote(ctx context.Context, req VoteRequest) (string, error)
	DeduceWord(ctx context.Context, req DeduceRequest) (string, error)
}

// SessionMetadata is the analytics record written once per game start.
type SessionMetadata struct {
	GameID            string
	PlayerCount       int
	BotCount          int
	ImpostorCount     int
	Difficulty        words.Difficulty
	PlayerNames       []string
	AllowImpostorHint bool
}

// SessionLogger persists session analytics, fire-and-forget. A failure
// must never affect gameplay.
type SessionLogger interface {
	LogSession(meta SessionMetadata)
}

// Observer receives engine events for metrics.
type Observer interface {
	GameStarted()
	DescriptionRecorded()
	VoteRecorded()
	SuggestionFallback()
	NarrationFailed()
	GameFinished(phase Phase)
}
