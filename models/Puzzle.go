package models

// Puzzle represents a scored challenge in the hunt. Puzzles are created once
// at hunt setup and immutable afterwards. Exactly one puzzle is expected to
// carry IsFinal=true (a data-entry invariant, not enforced at runtime).
type Puzzle struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"type:varchar(255);not null" json:"name"`
	Points    int         `gorm:"not null" json:"points"`
	IsFinal   bool        `gorm:"not null;default:false;column:is_final" json:"is_final"`
	Responses []*Response `gorm:"foreignKey:PuzzleID" json:"responses,omitempty"`
}
