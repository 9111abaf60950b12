package models

// Response is one row of the static rule table for a puzzle: a recognized
// guess (stored in canonical normalized form) mapped to a reply and a
// correctness flag. At most one row per puzzle is conventionally marked
// IsAnswer=true. Immutable at runtime.
type Response struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PuzzleID uint   `gorm:"not null;index;column:puzzle_id" json:"puzzle_id"`
	Guess    string `gorm:"type:varchar(255);not null" json:"guess"`
	IsAnswer bool   `gorm:"not null;default:false;column:is_answer" json:"is_answer"`
	Reply    string `gorm:"type:varchar(255);not null;column:reply" json:"reply"`
}
