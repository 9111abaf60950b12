package services

import (
	"errors"
	"fmt"
	"time"

	"huntapi/metrics"
	"huntapi/models"
	"huntapi/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// IncorrectReply is the fixed reply for guesses with no matching response row.
const IncorrectReply = "Incorrect guess (no follow-up data available)."

// GuessResult is the discriminated outcome of one guess submission, handed
// back to the gateway to render. Echo fields are always populated, including
// for already-solved puzzles, so the gateway can confirm the input before
// reporting the outcome.
type GuessResult struct {
	PuzzleID        uint   `json:"puzzle_id"`
	PuzzleName      string `json:"puzzle_name"`
	NormalizedGuess string `json:"normalized_guess"`
	Echo            string `json:"echo"`

	Status models.GuessStatus `json:"status,omitempty"`
	Reply  string             `json:"reply,omitempty"`

	AlreadySolved  bool   `json:"already_solved,omitempty"`
	PreviousAnswer string `json:"previous_answer,omitempty"`
	Duplicate      bool   `json:"duplicate,omitempty"`

	GuessesRemaining *int   `json:"guesses_remaining,omitempty"`
	RemainingMessage string `json:"remaining_message,omitempty"`

	Points     int  `json:"points,omitempty"`
	HuntSolved bool `json:"hunt_solved,omitempty"`
}

// PuzzleOption is one entry of the puzzle-selection list shown when a guess
// flow starts.
type PuzzleOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// GuessService classifies guesses and applies their scoring side effects.
// Each submission runs under the owning team's lock and inside a single
// transaction, so the guesslog insert and the team update commit or roll
// back together and concurrent submissions from one team cannot clobber each
// other's quota or score.
type GuessService struct {
	db     *gorm.DB
	locks  *TeamLocks
	mailer *EmailService
	now    func() time.Time
}

func NewGuessService(db *gorm.DB, locks *TeamLocks, mailer *EmailService) *GuessService {
	return &GuessService{db: db, locks: locks, mailer: mailer, now: time.Now}
}

// PuzzleOptions lists all puzzles in id order for the selection UI.
func (s *GuessService) PuzzleOptions() ([]PuzzleOption, error) {
	var puzzles []models.Puzzle
	if err := s.db.Order("id ASC").Find(&puzzles).Error; err != nil {
		return nil, err
	}

	options := make([]PuzzleOption, 0, len(puzzles))
	for _, p := range puzzles {
		options = append(options, PuzzleOption{ID: p.ID, Name: p.Name})
	}
	return options, nil
}

// SubmitGuess runs the full evaluation pipeline for one raw guess:
//
//  1. resolve membership and re-check the quota
//  2. resolve the puzzle and normalize the guess (echo data)
//  3. already-solved short-circuit: a prior correct entry ends processing
//  4. classify against the response rule table
//  5. duplicate short-circuit: reply is still reported but nothing persists
//  6. append to the guesslog and apply quota/score/completion effects
//
// The ordering is load-bearing; in particular the solved check runs before
// classification is reported and the duplicate check only suppresses
// persistence, never the reply.
func (s *GuessService) SubmitGuess(identity, displayName string, puzzleID uint, rawGuess string) (*GuessResult, error) {
	member, err := s.LookupTeam(identity)
	if err != nil {
		return nil, err
	}

	lock := s.locks.Get(member.Team.ID)
	lock.Lock()
	defer lock.Unlock()

	defer metrics.RecordDBOperation("submit_guess", "guesslog", time.Now())

	var result *GuessResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read the team inside the transaction; the pre-lock copy may be
		// stale by the time the lock is acquired.
		var team models.Team
		if err := tx.Where("id = ? AND is_deleted = ?", member.Team.ID, false).First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAMember
			}
			return err
		}

		// Quota gates the whole command, before the puzzle is even resolved:
		// an exhausted team is told to contact the organizers, not sent off to
		// fix its puzzle reference.
		if team.GuessesRemaining < 1 {
			return ErrQuotaExhausted
		}

		var puzzle models.Puzzle
		if err := tx.First(&puzzle, puzzleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownPuzzle
			}
			return err
		}

		normalized := utils.NormalizeGuess(rawGuess)
		result = &GuessResult{
			PuzzleID:        puzzle.ID,
			PuzzleName:      puzzle.Name,
			NormalizedGuess: normalized,
			Echo:            fmt.Sprintf("%s has guessed `%s` on `%s`.", displayName, normalized, puzzle.Name),
		}

		// Already solved? The guesslog is the source of truth, never a cache.
		var prior []models.GuessLog
		if err := tx.Where("team_id = ? AND puzzle_id = ?", team.ID, puzzle.ID).
			Find(&prior).Error; err != nil {
			return err
		}
		duplicate := false
		for _, entry := range prior {
			if entry.Status == models.GuessCorrect {
				result.AlreadySolved = true
				result.PreviousAnswer = entry.Guess
				return nil
			}
			if entry.Guess == normalized {
				duplicate = true
			}
		}

		// Classify against the rule table.
		status := models.GuessIncorrect
		reply := IncorrectReply
		reward := 0
		var match models.Response
		err := tx.Where("puzzle_id = ? AND guess = ?", puzzle.ID, normalized).First(&match).Error
		switch {
		case err == nil && match.IsAnswer:
			status = models.GuessCorrect
			reply = match.Reply
			reward = puzzle.Points
		case err == nil:
			status = models.GuessPartial
			reply = match.Reply
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		result.Status = status
		result.Reply = reply

		// A duplicate still gets its reply, but is a persistence no-op.
		if duplicate {
			result.Duplicate = true
			return nil
		}

		entry := models.GuessLog{
			PuzzleID:  puzzle.ID,
			TeamID:    team.ID,
			Guess:     normalized,
			Status:    status,
			GuessTime: s.now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		switch status {
		case models.GuessIncorrect:
			team.GuessesRemaining--
			if err := tx.Model(&models.Team{}).Where("id = ?", team.ID).
				Update("guesses_remaining", team.GuessesRemaining).Error; err != nil {
				return err
			}
			remaining := team.GuessesRemaining
			result.GuessesRemaining = &remaining
			result.RemainingMessage = remainingMessage(remaining)

		case models.GuessCorrect:
			now := s.now()
			updates := map[string]interface{}{
				"score":           team.Score + reward,
				"last_solve_time": now,
			}
			if puzzle.IsFinal && !team.IsHuntSolved {
				updates["is_hunt_solved"] = true
				updates["hunt_solve_time"] = now
				result.HuntSolved = true
			}
			if err := tx.Model(&models.Team{}).Where("id = ?", team.ID).
				Updates(updates).Error; err != nil {
				return err
			}
			result.Points = reward
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.HuntSolved && s.mailer != nil {
		if err := s.mailer.SendHuntCompletionEmail(member.Team.Name, s.now()); err != nil {
			log.Warn().Err(err).Str("team", member.Team.Name).Msg("failed to send hunt completion email")
		}
	}

	return result, nil
}

// LookupTeam resolves the identity or fails with ErrNotAMember. Used by both
// the guess flow gate and SubmitGuess itself.
func (s *GuessService) LookupTeam(identity string) (*Membership, error) {
	member, err := lookupMembership(s.db, identity)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotAMember
	}
	return member, nil
}

// CheckQuota fails with ErrQuotaExhausted when the team has no guesses left.
// Callers gate new guess flows on this before any interaction starts.
func (s *GuessService) CheckQuota(member *Membership) error {
	if member.Team.GuessesRemaining < 1 {
		return ErrQuotaExhausted
	}
	return nil
}

func remainingMessage(remaining int) string {
	if remaining == 1 {
		return "Your team has 1 guess remaining."
	}
	return fmt.Sprintf("Your team has %d guesses remaining.", remaining)
}
