package services

import (
	"testing"

	"huntapi/database"
	"huntapi/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory store with the hunt schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every pooled connection to :memory: is its own empty database; pin the
	// pool to one connection so all queries see the same store.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// seedHunt loads two regular puzzles and a final meta, each with a correct
// answer and a keep-going partial. Returns the puzzles in creation order.
func seedHunt(t *testing.T, db *gorm.DB) []models.Puzzle {
	t.Helper()

	puzzles := []models.Puzzle{
		{Name: "First Light", Points: 10},
		{Name: "Second Wind", Points: 20},
		{Name: "The Meta", Points: 50, IsFinal: true},
	}
	if err := db.Create(&puzzles).Error; err != nil {
		t.Fatalf("failed to seed puzzles: %v", err)
	}

	responses := []models.Response{
		{PuzzleID: puzzles[0].ID, Guess: "answer1", IsAnswer: true, Reply: "Correct!"},
		{PuzzleID: puzzles[0].ID, Guess: "keepgoing1", Reply: "Keep going!"},
		{PuzzleID: puzzles[1].ID, Guess: "answer2", IsAnswer: true, Reply: "Correct!"},
		{PuzzleID: puzzles[1].ID, Guess: "keepgoing2", Reply: "Keep going!"},
		{PuzzleID: puzzles[2].ID, Guess: "metaanswer", IsAnswer: true, Reply: "You've finished the hunt!"},
	}
	if err := db.Create(&responses).Error; err != nil {
		t.Fatalf("failed to seed responses: %v", err)
	}
	return puzzles
}

// newTeamService wires a directory over a fresh lock table.
func newTeamService(db *gorm.DB) *TeamService {
	return NewTeamService(db, NewTeamLocks())
}

// newGuessService wires an evaluator with no mailer.
func newGuessService(db *gorm.DB) *GuessService {
	return NewGuessService(db, NewTeamLocks(), nil)
}
