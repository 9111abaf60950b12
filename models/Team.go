package models

import "time"

// Team is a registered competing unit. Teams are soft-deleted (IsDeleted)
// rather than removed so guesslog rows keep a valid owner for historical
// reporting. Only the team directory and the scoring ledger mutate this row.
type Team struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"type:varchar(255);not null" json:"name"`
	Token            string     `gorm:"type:varchar(20);not null" json:"-"`
	GuessesRemaining int        `gorm:"not null;default:50;column:guesses_remaining" json:"guesses_remaining"`
	Score            int        `gorm:"not null;default:0" json:"score"`
	IsHuntSolved     bool       `gorm:"not null;default:false;column:is_hunt_solved" json:"is_hunt_solved"`
	IsDeleted        bool       `gorm:"not null;default:false;column:is_deleted" json:"-"`
	LastSolveTime    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;column:last_solve_time" json:"last_solve_time"`
	HuntSolveTime    *time.Time `gorm:"column:hunt_solve_time" json:"hunt_solve_time"`
	Solvers          []*Solver  `gorm:"foreignKey:TeamID" json:"solvers,omitempty"`
}
