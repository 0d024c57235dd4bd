// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameSession is the GORM mapping of a game session row. Both
// persistence backends share the game_sessions table.
type GormGameSession struct {
	gorm.Model
	GameID            string `gorm:"uniqueIndex;not null"`
	PlayerCount       int    `gorm:"not null"`
	BotCount          int    `gorm:"default:0"`
	ImpostorCount     int    `gorm:"not null"`
	Difficulty        string `gorm:"index;not null"`
	PlayerNames       string `gorm:"type:jsonb;not null"`
	AllowImpostorHint bool   `gorm:"default:false"`
}

func (GormGameSession) TableName() string {
	return "game_sessions"
}
