package database

import (
	"huntapi/config"
	"huntapi/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres connection and migrates the schema. The handle
// is returned to the caller and threaded through every service explicitly;
// there is no package-level connection.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.SeedDemo {
		if err := Seed(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates the hunt tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Puzzle{},
		&models.Response{},
		&models.Team{},
		&models.Solver{},
		&models.GuessLog{},
	)
}

// Seed loads the example hunt when the puzzle table is empty: three regular
// puzzles plus a final meta, each with a correct answer and a keep-going
// partial. Running it against a populated database is a no-op.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Puzzle{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	puzzles := []models.Puzzle{
		{Name: "Example Puzzle 1", Points: 1},
		{Name: "Example Puzzle 2", Points: 1},
		{Name: "Example Puzzle 3", Points: 1},
		{Name: "Example Meta", Points: 1, IsFinal: true},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&puzzles).Error; err != nil {
			return err
		}

		responses := []models.Response{
			{PuzzleID: puzzles[0].ID, Guess: "answer1", IsAnswer: true, Reply: "Correct!"},
			{PuzzleID: puzzles[0].ID, Guess: "keepgoing1", Reply: "Keep going!"},
			{PuzzleID: puzzles[1].ID, Guess: "answer2", IsAnswer: true, Reply: "Correct!"},
			{PuzzleID: puzzles[1].ID, Guess: "keepgoing2", Reply: "Keep going!"},
			{PuzzleID: puzzles[2].ID, Guess: "answer3", IsAnswer: true, Reply: "Correct!"},
			{PuzzleID: puzzles[2].ID, Guess: "keepgoing3", Reply: "Keep going!"},
			{PuzzleID: puzzles[3].ID, Guess: "metaanswer", IsAnswer: true, Reply: "Correct! You've finished the hunt!"},
			{PuzzleID: puzzles[3].ID, Guess: "metakeepgoing", Reply: "Keep going!"},
		}
		if err := tx.Create(&responses).Error; err != nil {
			return err
		}

		log.Info().Int("puzzles", len(puzzles)).Int("responses", len(responses)).Msg("seeded demo hunt")
		return nil
	})
}
