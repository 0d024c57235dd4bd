// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/jetchart/impostor/session"
)

var (
	ErrNoSessions = errors.New("no sessions for game")
)

// Broadcaster fans device messages out to sessions.
type Broadcaster interface {
	BroadcastToGame(gameID string, msgID uint16, data []byte) error
	BroadcastToAll(msgID uint16, data []byte) error
}

// GameBroadcaster sends to every session attached to a game, which is
// usually one shared device plus any spectators.
type GameBroadcaster struct {
	sessionManager *session.Manager
}

func NewGameBroadcaster(sessionManager *session.Manager) *GameBroadcaster {
	return &GameBroadcaster{sessionManager: sessionManager}
}

func (b *GameBroadcaster) BroadcastToGame(gameID string, msgID uint16, data []byte) error {
	sessions := b.sessionManager.GetByGameID(gameID)
	if len(sessions) == 0 {
		return ErrNoSessions
	}
	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			// The reader goroutine notices dead connections; keep going.
			continue
		}
	}
	return nil
}

func (b *GameBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
