// models/models.go
package models

import (
	"time"
)

// GameSessionRecord is one analytics row, written when a game starts.
type GameSessionRecord struct {
	GameID            string    `json:"game_id"`
	PlayerCount       int       `json:"player_count"`
	BotCount          int       `json:"bot_count"`
	ImpostorCount     int       `json:"impostor_count"`
	Difficulty        string    `json:"difficulty"`
	PlayerNames       []string  `json:"player_names"`
	AllowImpostorHint bool      `json:"allow_impostor_hint"`
	CreatedAt         time.Time `json:"created_at"`
}

// SessionStats aggregates the game_sessions table.
type SessionStats struct {
	TotalSessions    int64            `json:"total_sessions"`
	TotalPlayers     int64            `json:"total_players"`
	SessionsWithBots int64            `json:"sessions_with_bots"`
	PerDifficulty    map[string]int64 `json:"per_difficulty"`
}
