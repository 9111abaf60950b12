package services

import (
	"bytes"
	"strings"
	"testing"

	"huntapi/models"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes a hunt workbook with the given sheet rows (header
// included) and returns it as a reader.
func buildWorkbook(t *testing.T, puzzleRows, responseRows [][]interface{}) *bytes.Reader {
	t.Helper()

	xlsx := excelize.NewFile()
	defer xlsx.Close()

	xlsx.SetSheetName("Sheet1", "Puzzles")
	for i, row := range puzzleRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := xlsx.SetSheetRow("Puzzles", cell, &row); err != nil {
			t.Fatalf("failed to write Puzzles row: %v", err)
		}
	}

	if _, err := xlsx.NewSheet("Responses"); err != nil {
		t.Fatalf("failed to add Responses sheet: %v", err)
	}
	for i, row := range responseRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := xlsx.SetSheetRow("Responses", cell, &row); err != nil {
			t.Fatalf("failed to write Responses row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportWorkbook(t *testing.T) {
	db := newTestDB(t)
	svc := NewImportService(db)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"Name", "Points", "Final"},
			{"Opening Act", 10, ""},
			{"Grand Finale", 50, "yes"},
		},
		[][]interface{}{
			{"Puzzle", "Guess", "IsAnswer", "Reply"},
			{1, "First Answer!", "true", "Correct!"},
			{1, "almost", "false", "Keep going!"},
			{2, "finale", "true", "You've finished the hunt!"},
		})

	summary, err := svc.ImportWorkbook(workbook)
	if err != nil {
		t.Fatalf("should import the workbook: %v", err)
	}
	if summary.Puzzles != 2 || summary.Responses != 3 {
		t.Fatalf("expected 2 puzzles and 3 responses, got %+v", summary)
	}

	var final models.Puzzle
	if err := db.First(&final, "name = ?", "Grand Finale").Error; err != nil {
		t.Fatalf("final puzzle should be stored: %v", err)
	}
	if !final.IsFinal || final.Points != 50 {
		t.Fatalf("final puzzle stored wrong: %+v", final)
	}

	// Guesses are normalized on import so the rule table holds canonical forms.
	var rule models.Response
	if err := db.First(&rule, "guess = ?", "firstanswer").Error; err != nil {
		t.Fatalf("normalized rule should be stored: %v", err)
	}
	if !rule.IsAnswer {
		t.Fatal("answer flag should be set")
	}
}

func TestImportWorkbookRejectsShortResponseRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewImportService(db)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"Name", "Points", "Final"},
			{"Opening Act", 10, ""},
		},
		[][]interface{}{
			{"Puzzle", "Guess", "IsAnswer", "Reply"},
			{1, "orphaned rule"}, // missing is_answer and reply
		})

	_, err := svc.ImportWorkbook(workbook)
	if err == nil {
		t.Fatal("a half-filled response row must fail the import")
	}
	if !strings.Contains(err.Error(), "Responses row 2") {
		t.Fatalf("error should name the offending row, got %v", err)
	}

	// Nothing was stored.
	var count int64
	db.Model(&models.Puzzle{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed import must not store puzzles, found %d", count)
	}
}

func TestImportWorkbookRejectsBadPuzzleReference(t *testing.T) {
	db := newTestDB(t)
	svc := NewImportService(db)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"Name", "Points", "Final"},
			{"Opening Act", 10, ""},
		},
		[][]interface{}{
			{"Puzzle", "Guess", "IsAnswer", "Reply"},
			{7, "answer", "true", "Correct!"},
		})

	if _, err := svc.ImportWorkbook(workbook); err == nil {
		t.Fatal("a response pointing at a missing puzzle must fail the import")
	}
}

func TestImportWorkbookRefusedAfterGuesses(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	guesses := newGuessService(db)
	svc := NewImportService(db)

	teams.CreateTeam("u1", "alice", "Alpha")
	if _, err := guesses.SubmitGuess("u1", "alice", puzzles[0].ID, "answer1"); err != nil {
		t.Fatalf("should log a guess: %v", err)
	}

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"Name", "Points", "Final"},
			{"Replacement", 10, ""},
		},
		[][]interface{}{
			{"Puzzle", "Guess", "IsAnswer", "Reply"},
			{1, "answer", "true", "Correct!"},
		})

	if _, err := svc.ImportWorkbook(workbook); err == nil {
		t.Fatal("import must be refused once guesses have been logged")
	}

	// The live hunt is untouched.
	var count int64
	db.Model(&models.Puzzle{}).Count(&count)
	if count != int64(len(puzzles)) {
		t.Fatalf("expected the original %d puzzles, found %d", len(puzzles), count)
	}
}
