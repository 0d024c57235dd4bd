// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jetchart/impostor/models"
)

// GormPostgreSQL implements Store on GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL opens the connection, configures the pool, and
// migrates the game_sessions table.
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameSession{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveGameSession(record models.GameSessionRecord) error {
	names, err := json.Marshal(record.PlayerNames)
	if err != nil {
		return err
	}
	session := models.GormGameSession{
		GameID:            record.GameID,
		PlayerCount:       record.PlayerCount,
		BotCount:          record.BotCount,
		ImpostorCount:     record.ImpostorCount,
		Difficulty:        record.Difficulty,
		PlayerNames:       string(names),
		AllowImpostorHint: record.AllowImpostorHint,
	}
	return p.db.Create(&session).Error
}

func (p *GormPostgreSQL) SessionStats() (models.SessionStats, error) {
	stats := models.SessionStats{PerDifficulty: make(map[string]int64)}

	row := struct {
		Total   int64
		Players int64
		Bots    int64
	}{}
	err := p.db.Raw(`
        SELECT
            COUNT(*) as total,
            COALESCE(SUM(player_count), 0) as players,
            COALESCE(SUM(CASE WHEN bot_count > 0 THEN 1 ELSE 0 END), 0) as bots
        FROM game_sessions
        WHERE deleted_at IS NULL`).Scan(&row).Error
	if err != nil {
		return stats, err
	}
	stats.TotalSessions = row.Total
	stats.TotalPlayers = row.Players
	stats.SessionsWithBots = row.Bots

	rows, err := p.db.Raw(`
        SELECT difficulty, COUNT(*)
        FROM game_sessions
        WHERE deleted_at IS NULL
        GROUP BY difficulty`).Rows()
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

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
