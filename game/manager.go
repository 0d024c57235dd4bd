// game/manager.go
package game

import (
	"errors"
	"sync"

	"github.com/jetchart/impostor/logger"
)

// ErrGameNotFound is returned when looking up an unknown game ID.
var ErrGameNotFound = errors.New("game: game not found")

// Manager tracks live engines by game ID.
type Manager struct {
	mutex sync.RWMutex
	games map[string]*Engine
}

func NewManager() *Manager {
	return &Manager{games: make(map[string]*Engine)}
}

// Create builds and registers a new engine. The caller wires OnChange
// and OnNotice before Start.
func (m *Manager) Create(cfg Config, deps Deps) (*Engine, error) {
	e, err := NewEngine(cfg, deps)
	if err != nil {
		return nil, err
	}
	m.mutex.Lock()
	m.games[e.ID()] = e
	m.mutex.Unlock()
	logger.Log.Infof("Game created: %s (%d players)", e.ID(), len(cfg.Players))
	return e, nil
}

func (m *Manager) Get(id string) (*Engine, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	e, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return e, nil
}

// Remove closes the engine and forgets it.
func (m *Manager) Remove(id string) {
	m.mutex.Lock()
	e, ok := m.games[id]
	delete(m.games, id)
	m.mutex.Unlock()
	if ok {
		e.Close()
		logger.Log.Infof("Game removed: %s", id)
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.games)
}

// CloseAll shuts down every live game, for server shutdown.
func (m *Manager) CloseAll() {
	m.mutex.Lock()
	games := m.games
	m.games = make(map[string]*Engine)
	m.mutex.Unlock()
	for _, e := range games {
		e.Close()
	}
}
