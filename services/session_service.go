// services/session_service.go
package services

import (
	"time"

	"github.com/jetchart/impostor/game"
	"github.com/jetchart/impostor/logger"
	"github.com/jetchart/impostor/models"
	"github.com/jetchart/impostor/persistence"
)

// SessionService bridges the engine's session analytics to the store.
// It implements game.SessionLogger; storage failures are logged and
// swallowed because analytics must never affect gameplay.
type SessionService struct {
	store persistence.Store
}

func NewSessionService(store persistence.Store) *SessionService {
	if store == nil {
		store = persistence.Nop{}
	}
	return &SessionService{store: store}
}

func (s *SessionService) LogSession(meta game.SessionMetadata) {
	record := models.GameSessionRecord{
		GameID:            meta.GameID,
		PlayerCount:       meta.PlayerCount,
		BotCount:          meta.BotCount,
		ImpostorCount:     meta.ImpostorCount,
		Difficulty:        string(meta.Difficulty),
		PlayerNames:       meta.PlayerNames,
		AllowImpostorHint: meta.AllowImpostorHint,
		CreatedAt:         time.Now(),
	}
	if err := s.store.SaveGameSession(record); err != nil {
		logger.Log.Warnf("saving session %s failed: %v", meta.GameID, err)
	}
}

// Stats reports aggregate session counters, for the stats RPC.
func (s *SessionService) Stats() (models.SessionStats, error) {
	return s.store.SessionStats()
}
