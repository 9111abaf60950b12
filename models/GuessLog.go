package models

import "time"

// GuessStatus classifies one accepted guess attempt.
type GuessStatus string

const (
	GuessCorrect   GuessStatus = "correct"
	GuessIncorrect GuessStatus = "incorrect"
	GuessPartial   GuessStatus = "partial"
)

// GuessLog is the append-only audit trail of accepted guess attempts. Rows
// are never updated or deleted; duplicate submissions never produce a row.
// "Already solved" and "duplicate" checks are always derived from this table.
type GuessLog struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	PuzzleID  uint        `gorm:"not null;index:idx_guesslog_team_puzzle,priority:2;column:puzzle_id" json:"puzzle_id"`
	TeamID    uint        `gorm:"not null;index:idx_guesslog_team_puzzle,priority:1;column:team_id" json:"team_id"`
	Guess     string      `gorm:"type:varchar(255);not null" json:"guess"`
	Status    GuessStatus `gorm:"type:varchar(20);not null" json:"status"`
	GuessTime time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:guess_time" json:"guess_time"`
}

// TableName keeps the original singular table name.
func (GuessLog) TableName() string { return "guesslog" }
