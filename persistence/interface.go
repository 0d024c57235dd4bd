// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/jetchart/impostor/models"
)

// Store persists game session analytics.
type Store interface {
	SaveGameSession(record models.GameSessionRecord) error
	SessionStats() (models.SessionStats, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)

// Nop discards everything. Used when the server runs without a
// database.
type Nop struct{}

func (Nop) SaveGameSession(record models.GameSessionRecord) error { return nil }

func (Nop) SessionStats() (models.SessionStats, error) {
	return models.SessionStats{PerDifficulty: map[string]int64{}}, nil
}

func (Nop) Close() error { return nil }
