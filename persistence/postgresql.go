// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/jetchart/impostor/models"
)

// PostgreSQL implements Store on database/sql, for deployments that
// prefer plain SQL over GORM.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_sessions (
            id SERIAL PRIMARY KEY,
            game_id VARCHAR(64) UNIQUE NOT NULL,
            player_count INT NOT NULL,
            bot_count INT NOT NULL DEFAULT 0,
            impostor_count INT NOT NULL,
            difficulty VARCHAR(32) NOT NULL,
            player_names JSONB NOT NULL,
            allow_impostor_hint BOOLEAN NOT NULL DEFAULT FALSE,
            deleted_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_game_sessions_game_id ON game_sessions(game_id);
        CREATE INDEX IF NOT EXISTS idx_game_sessions_difficulty ON game_sessions(difficulty);
        CREATE INDEX IF NOT EXISTS idx_game_sessions_created_at ON game_sessions(created_at);
    `)
	return err
}

func (p *PostgreSQL) SaveGameSession(record models.GameSessionRecord) error {
	names, err := json.Marshal(record.PlayerNames)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO game_sessions
            (game_id, player_count, bot_count, impostor_count, difficulty, player_names, allow_impostor_hint)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err = p.db.ExecContext(ctx, query,
		record.GameID,
		record.PlayerCount,
		record.BotCount,
		record.ImpostorCount,
		record.Difficulty,
		names,
		record.AllowImpostorHint)
	return err
}

func (p *PostgreSQL) SessionStats() (models.SessionStats, error) {
	stats := models.SessionStats{PerDifficulty: make(map[string]int64)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.db.QueryRowContext(ctx, `
        SELECT
            COUNT(*),
            COALESCE(SUM(player_count), 0),
            COALESCE(SUM(CASE WHEN bot_count > 0 THEN 1 ELSE 0 END), 0)
        FROM game_sessions
        WHERE deleted_at IS NULL
    `).Scan(&stats.TotalSessions, &stats.TotalPlayers, &stats.SessionsWithBots)
	if err != nil {
		return stats, err
	}

	rows, err := p.db.QueryContext(ctx, `
        SELECT difficulty, COUNT(*)
        FROM game_sessions
        WHERE deleted_at IS NULL
        GROUP BY difficulty
    `)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var difficulty string
		var count int64
		if err := rows.Scan(&difficulty, &count); err != nil {
			return stats, err
		}
		stats.PerDifficulty[difficulty] = count
	}
	return stats, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
