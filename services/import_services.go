package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"huntapi/models"
	"huntapi/utils"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportSummary reports what a workbook import created.
type ImportSummary struct {
	Puzzles   int `json:"puzzles"`
	Responses int `json:"responses"`
}

// ImportService loads a hunt definition from an XLSX workbook. The workbook
// carries a "Puzzles" sheet (Name, Points, Final) and a "Responses" sheet
// (Puzzle, Guess, IsAnswer, Reply) where Puzzle is the 1-based row number of
// the puzzle it belongs to. Guesses are normalized on import so the rule
// table always holds canonical forms.
type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// ImportWorkbook parses and stores the hunt. It refuses to run once guesses
// have been logged; puzzles are immutable after the hunt starts.
func (s *ImportService) ImportWorkbook(r io.Reader) (*ImportSummary, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX file: %w", err)
	}
	defer xlsx.Close()

	puzzles, err := readPuzzleSheet(xlsx)
	if err != nil {
		return nil, err
	}
	responses, err := readResponseSheet(xlsx, len(puzzles))
	if err != nil {
		return nil, err
	}

	finals := 0
	for _, p := range puzzles {
		if p.IsFinal {
			finals++
		}
	}
	if finals != 1 {
		// Data-entry invariant, warned rather than enforced; the original
		// seed data was equally unchecked.
		log.Warn().Int("final_puzzles", finals).Msg("workbook does not declare exactly one final puzzle")
	}

	summary := &ImportSummary{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var logged int64
		if err := tx.Model(&models.GuessLog{}).Count(&logged).Error; err != nil {
			return err
		}
		if logged > 0 {
			return fmt.Errorf("cannot import a hunt after guesses have been logged")
		}

		if err := tx.Where("1 = 1").Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Puzzle{}).Error; err != nil {
			return err
		}

		if err := tx.Create(&puzzles).Error; err != nil {
			return err
		}
		for i := range responses {
			// Remap the sheet's 1-based puzzle ordinal to the stored id.
			responses[i].PuzzleID = puzzles[responses[i].PuzzleID-1].ID
		}
		if err := tx.Create(&responses).Error; err != nil {
			return err
		}

		summary.Puzzles = len(puzzles)
		summary.Responses = len(responses)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func readPuzzleSheet(xlsx *excelize.File) ([]models.Puzzle, error) {
	rows, err := xlsx.GetRows("Puzzles")
	if err != nil {
		return nil, fmt.Errorf("failed to read Puzzles sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("Puzzles sheet needs a header and at least one puzzle")
	}

	var puzzles []models.Puzzle
	for i, row := range rows[1:] {
		if rowBlank(row) {
			continue
		}
		if strings.TrimSpace(row[0]) == "" {
			return nil, fmt.Errorf("Puzzles row %d: missing puzzle name", i+2)
		}
		points := 0
		if len(row) > 1 {
			points, err = strconv.Atoi(strings.TrimSpace(row[1]))
			if err != nil || points < 0 {
				return nil, fmt.Errorf("Puzzles row %d: bad points value %q", i+2, row[1])
			}
		}
		final := len(row) > 2 && parseBool(row[2])
		puzzles = append(puzzles, models.Puzzle{
			Name:    strings.TrimSpace(row[0]),
			Points:  points,
			IsFinal: final,
		})
	}
	if len(puzzles) == 0 {
		return nil, fmt.Errorf("Puzzles sheet contains no puzzles")
	}
	return puzzles, nil
}

func readResponseSheet(xlsx *excelize.File, puzzleCount int) ([]models.Response, error) {
	rows, err := xlsx.GetRows("Responses")
	if err != nil {
		return nil, fmt.Errorf("failed to read Responses sheet: %w", err)
	}

	var responses []models.Response
	for i, row := range rows[1:] {
		if rowBlank(row) {
			continue
		}
		// A half-filled row is a typo, not padding; dropping it silently
		// would make a rule vanish from the hunt.
		if len(row) < 4 || strings.TrimSpace(row[0]) == "" {
			return nil, fmt.Errorf("Responses row %d: expected puzzle, guess, is_answer and reply columns", i+2)
		}
		ordinal, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || ordinal < 1 || ordinal > puzzleCount {
			return nil, fmt.Errorf("Responses row %d: bad puzzle reference %q", i+2, row[0])
		}
		responses = append(responses, models.Response{
			// Stashes the ordinal; remapped to the stored id after the
			// puzzles are created.
			PuzzleID: uint(ordinal),
			Guess:    utils.NormalizeGuess(row[1]),
			IsAnswer: parseBool(row[2]),
			Reply:    strings.TrimSpace(row[3]),
		})
	}
	return responses, nil
}

func rowBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "yes", "1", "x":
		return true
	}
	return false
}
