package services

import (
	"time"

	"huntapi/models"

	"gorm.io/gorm"
)

// LeaderboardRow is one ranked entry over the non-deleted teams.
type LeaderboardRow struct {
	Rank          int        `json:"rank"`
	TeamName      string     `json:"team_name"`
	Score         int        `json:"score"`
	LastSolveTime time.Time  `json:"last_solve_time"`
	HuntSolveTime *time.Time `json:"hunt_solve_time,omitempty"`
}

// DashboardRow is one puzzle of the dashboard. Counts are global across all
// teams; TeamAnswer is filled only when the query scopes to a team that has
// solved the puzzle.
type DashboardRow struct {
	PuzzleID   uint   `json:"puzzle_id"`
	PuzzleName string `json:"puzzle_name"`
	SolveCount int    `json:"solve_count"`
	GuessCount int    `json:"guess_count"`
	TeamAnswer string `json:"team_answer,omitempty"`
}

// QueryService is the read-only aggregation side of the hunt: leaderboard
// ranking and per-puzzle solve/guess counts, consumed by the display layer.
type QueryService struct {
	db *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// Leaderboard ranks non-deleted teams: finished teams first by earliest
// finish, then score descending, then earlier activity first. Rank is a
// dense 1-based sequence over the ordered result.
func (s *QueryService) Leaderboard() ([]LeaderboardRow, error) {
	var teams []models.Team
	if err := s.db.Where("is_deleted = ?", false).
		Order("hunt_solve_time ASC NULLS LAST, score DESC, last_solve_time ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(teams))
	for i, team := range teams {
		rows = append(rows, LeaderboardRow{
			Rank:          i + 1,
			TeamName:      team.Name,
			Score:         team.Score,
			LastSolveTime: team.LastSolveTime,
			HuntSolveTime: team.HuntSolveTime,
		})
	}
	return rows, nil
}

// PuzzleDashboard returns all puzzles in id order with global solve and guess
// counts (correct and incorrect guesslog entries; partials count in neither).
// When teamID is given, the team's winning answer is attached to each puzzle
// it has solved.
func (s *QueryService) PuzzleDashboard(teamID *uint) ([]DashboardRow, error) {
	var rows []DashboardRow
	err := s.db.Raw(`
		SELECT puzzles.id AS puzzle_id, puzzles.name AS puzzle_name,
			COUNT(CASE WHEN guesslog.status = 'correct' THEN 1 END) AS solve_count,
			COUNT(CASE WHEN guesslog.status = 'incorrect' THEN 1 END) AS guess_count
		FROM puzzles LEFT JOIN guesslog ON guesslog.puzzle_id = puzzles.id
		GROUP BY puzzles.id, puzzles.name
		ORDER BY puzzles.id ASC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	if teamID == nil {
		return rows, nil
	}

	var solved []models.GuessLog
	if err := s.db.Where("team_id = ? AND status = ?", *teamID, models.GuessCorrect).
		Find(&solved).Error; err != nil {
		return nil, err
	}

	answers := make(map[uint]string, len(solved))
	for _, entry := range solved {
		answers[entry.PuzzleID] = entry.Guess
	}
	for i := range rows {
		rows[i].TeamAnswer = answers[rows[i].PuzzleID]
	}
	return rows, nil
}
