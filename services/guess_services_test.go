package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"huntapi/models"

	"gorm.io/gorm"
)

func TestSubmitGuessCorrect(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")

	result, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "Answer 1!")
	if err != nil {
		t.Fatalf("should evaluate the guess: %v", err)
	}
	if result.Status != models.GuessCorrect {
		t.Fatalf("expected correct, got %q", result.Status)
	}
	if result.NormalizedGuess != "answer1" {
		t.Fatalf("expected normalized answer1, got %q", result.NormalizedGuess)
	}
	if result.Reply != "Correct!" {
		t.Fatalf("expected the stored reply, got %q", result.Reply)
	}
	if result.Points != 10 {
		t.Fatalf("expected 10 points, got %d", result.Points)
	}
	if result.GuessesRemaining != nil {
		t.Fatal("a correct guess must not spend quota")
	}

	var team models.Team
	db.First(&team, "name = ?", "Alpha")
	if team.Score != 10 {
		t.Fatalf("expected score 10, got %d", team.Score)
	}
	if team.GuessesRemaining != 50 {
		t.Fatalf("quota should be untouched, got %d", team.GuessesRemaining)
	}
	if team.IsHuntSolved {
		t.Fatal("a regular puzzle must not complete the hunt")
	}
}

func TestSubmitGuessIncorrectSpendsQuota(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")

	result, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "wrong")
	if err != nil {
		t.Fatalf("should evaluate the guess: %v", err)
	}
	if result.Status != models.GuessIncorrect {
		t.Fatalf("expected incorrect, got %q", result.Status)
	}
	if result.Reply != IncorrectReply {
		t.Fatalf("expected the fixed incorrect reply, got %q", result.Reply)
	}
	if result.GuessesRemaining == nil || *result.GuessesRemaining != 49 {
		t.Fatalf("expected 49 remaining, got %v", result.GuessesRemaining)
	}
	if result.RemainingMessage != "Your team has 49 guesses remaining." {
		t.Fatalf("unexpected remaining message: %q", result.RemainingMessage)
	}

	var team models.Team
	db.First(&team, "name = ?", "Alpha")
	if team.GuessesRemaining != 49 {
		t.Fatalf("expected stored quota 49, got %d", team.GuessesRemaining)
	}
	if team.Score != 0 {
		t.Fatalf("score should be untouched, got %d", team.Score)
	}
}

func TestSubmitGuessPartial(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")

	result, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "keep going 1")
	if err != nil {
		t.Fatalf("should evaluate the guess: %v", err)
	}
	if result.Status != models.GuessPartial {
		t.Fatalf("expected partial, got %q", result.Status)
	}
	if result.Reply != "Keep going!" {
		t.Fatalf("expected the stored reply, got %q", result.Reply)
	}

	// A partial is free and scoreless, but it is still logged.
	var team models.Team
	db.First(&team, "name = ?", "Alpha")
	if team.GuessesRemaining != 50 || team.Score != 0 {
		t.Fatalf("partial should have no ledger effect, got quota %d score %d",
			team.GuessesRemaining, team.Score)
	}
	var logged int64
	db.Model(&models.GuessLog{}).Where("status = ?", models.GuessPartial).Count(&logged)
	if logged != 1 {
		t.Fatalf("expected 1 partial guesslog entry, got %d", logged)
	}
}

func TestSubmitGuessAlreadySolved(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")
	if _, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "answer1"); err != nil {
		t.Fatalf("first solve should succeed: %v", err)
	}

	result, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "anything else")
	if err != nil {
		t.Fatalf("a solved puzzle is not an error: %v", err)
	}
	if !result.AlreadySolved {
		t.Fatal("expected the already-solved short-circuit")
	}
	if result.PreviousAnswer != "answer1" {
		t.Fatalf("expected the winning answer back, got %q", result.PreviousAnswer)
	}
	if result.Echo == "" {
		t.Fatal("echo fields must be populated even when short-circuiting")
	}

	// No second row, no ledger movement.
	var entries int64
	db.Model(&models.GuessLog{}).Count(&entries)
	if entries != 1 {
		t.Fatalf("expected 1 guesslog entry, got %d", entries)
	}
	var team models.Team
	db.First(&team, "name = ?", "Alpha")
	if team.Score != 10 || team.GuessesRemaining != 50 {
		t.Fatalf("ledger should be untouched, got score %d quota %d",
			team.Score, team.GuessesRemaining)
	}
}

func TestSubmitGuessDuplicate(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")
	svc.SubmitGuess("u1", "alice", puzzles[0].ID, "keepgoing1")

	// Same normalized text, different raw form, different member.
	teams.JoinTeam("u2", "bob", mustToken(t, db, "Alpha"))
	result, err := svc.SubmitGuess("u2", "bob", puzzles[0].ID, "KEEP going 1")
	if err != nil {
		t.Fatalf("a duplicate is not an error: %v", err)
	}
	if !result.Duplicate {
		t.Fatal("expected the duplicate marker")
	}
	if result.Reply != "Keep going!" {
		t.Fatalf("duplicate must still carry the reply, got %q", result.Reply)
	}

	var entries int64
	db.Model(&models.GuessLog{}).Count(&entries)
	if entries != 1 {
		t.Fatalf("duplicate must not persist, got %d entries", entries)
	}
}

func TestSubmitGuessQuotaExhausted(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	team, _ := teams.CreateTeam("u1", "alice", "Alpha")
	db.Model(&models.Team{}).Where("id = ?", team.ID).Update("guesses_remaining", 1)

	result, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "wrong")
	if err != nil {
		t.Fatalf("the last guess should be accepted: %v", err)
	}
	if *result.GuessesRemaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", *result.GuessesRemaining)
	}

	if _, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "answer1"); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}

	// The counter never goes negative.
	var stored models.Team
	db.First(&stored, team.ID)
	if stored.GuessesRemaining != 0 {
		t.Fatalf("expected quota to stay at 0, got %d", stored.GuessesRemaining)
	}
}

func TestConcurrentGuessesSerializePerTeam(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	team, _ := teams.CreateTeam("u1", "alice", "Alpha")

	// All submissions hit one team at once. Each read-modify-write runs under
	// the team lock, so no quota decrement may be lost.
	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, fmt.Sprintf("wrong%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent guess failed: %v", err)
		}
	}

	var stored models.Team
	db.First(&stored, team.ID)
	if stored.GuessesRemaining != 50-n {
		t.Fatalf("expected quota %d after %d incorrect guesses, got %d", 50-n, n, stored.GuessesRemaining)
	}
	var entries int64
	db.Model(&models.GuessLog{}).Where("team_id = ?", team.ID).Count(&entries)
	if entries != n {
		t.Fatalf("expected %d guesslog rows, got %d", n, entries)
	}
}

func TestSubmitGuessRemainingMessageSingular(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	team, _ := teams.CreateTeam("u1", "alice", "Alpha")
	db.Model(&models.Team{}).Where("id = ?", team.ID).Update("guesses_remaining", 2)

	result, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "wrong")
	if err != nil {
		t.Fatalf("should evaluate the guess: %v", err)
	}
	if result.RemainingMessage != "Your team has 1 guess remaining." {
		t.Fatalf("expected singular phrasing, got %q", result.RemainingMessage)
	}
}

func TestQuotaCheckedBeforePuzzleLookup(t *testing.T) {
	db := newTestDB(t)
	seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	team, _ := teams.CreateTeam("u1", "alice", "Alpha")
	db.Model(&models.Team{}).Where("id = ?", team.ID).Update("guesses_remaining", 0)

	// An exhausted team is turned away before its puzzle reference is looked
	// at, even when that reference is bad.
	if _, err := svc.SubmitGuess("u1", "alice", 999, "answer1"); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
}

func TestSubmitGuessUnknownPuzzle(t *testing.T) {
	db := newTestDB(t)
	seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")
	if _, err := svc.SubmitGuess("u1", "alice", 999, "answer1"); !errors.Is(err, ErrUnknownPuzzle) {
		t.Fatalf("expected ErrUnknownPuzzle, got %v", err)
	}
}

func TestSubmitGuessNotAMember(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	svc := newGuessService(db)

	if _, err := svc.SubmitGuess("ghost", "ghost", puzzles[0].ID, "answer1"); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}

func TestSubmitGuessFinalPuzzleCompletesHunt(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")

	solveTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return solveTime }

	result, err := svc.SubmitGuess("u1", "alice", puzzles[2].ID, "meta answer")
	if err != nil {
		t.Fatalf("should solve the final puzzle: %v", err)
	}
	if !result.HuntSolved {
		t.Fatal("expected the completion flag")
	}
	if result.Points != 50 {
		t.Fatalf("expected 50 points, got %d", result.Points)
	}

	var team models.Team
	db.First(&team, "name = ?", "Alpha")
	if !team.IsHuntSolved {
		t.Fatal("team should be marked hunt-solved")
	}
	if team.HuntSolveTime == nil || !team.HuntSolveTime.Equal(solveTime) {
		t.Fatalf("expected hunt solve time %v, got %v", solveTime, team.HuntSolveTime)
	}
}

func TestHuntCompletionRecordedOnce(t *testing.T) {
	db := newTestDB(t)
	puzzles := seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	teams.CreateTeam("u1", "alice", "Alpha")

	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }
	svc.SubmitGuess("u1", "alice", puzzles[2].ID, "metaanswer")

	// Solving another puzzle later must not move the completion timestamp.
	svc.now = func() time.Time { return first.Add(time.Hour) }
	result, err := svc.SubmitGuess("u1", "alice", puzzles[0].ID, "answer1")
	if err != nil {
		t.Fatalf("should solve a regular puzzle: %v", err)
	}
	if result.HuntSolved {
		t.Fatal("completion must be reported only on the finishing guess")
	}

	var team models.Team
	db.First(&team, "name = ?", "Alpha")
	if !team.HuntSolveTime.Equal(first) {
		t.Fatalf("completion time moved: %v", team.HuntSolveTime)
	}
}

func TestCheckQuota(t *testing.T) {
	db := newTestDB(t)
	seedHunt(t, db)
	teams := newTeamService(db)
	svc := newGuessService(db)

	team, _ := teams.CreateTeam("u1", "alice", "Alpha")

	member, err := svc.LookupTeam("u1")
	if err != nil {
		t.Fatalf("should resolve membership: %v", err)
	}
	if err := svc.CheckQuota(member); err != nil {
		t.Fatalf("fresh team should have quota: %v", err)
	}

	db.Model(&models.Team{}).Where("id = ?", team.ID).Update("guesses_remaining", 0)
	member, _ = svc.LookupTeam("u1")
	if err := svc.CheckQuota(member); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
}

// mustToken reads back a team's join token by name.
func mustToken(t *testing.T, db *gorm.DB, name string) string {
	t.Helper()
	var team models.Team
	if err := db.First(&team, "name = ?", name).Error; err != nil {
		t.Fatalf("failed to read team %q: %v", name, err)
	}
	return team.Token
}
