package guesses

import (
	"github.com/gin-gonic/gin"

	"huntapi/services"
)

// Constants for error and status messages
const (
	ErrNotRegistered = "Guessing is only available to registered solvers. Create or join a team first."
	ErrOutOfGuesses  = "Your team has run out of guesses. To request additional guesses, contact the hunt organizers."
	ErrUnknownPuzzle = "No such puzzle."
	ErrFlowNotFound  = "No such flow in progress"
	ErrFlowExpired   = "Request has timed out. Please try again."
	ErrFlowWrongStep = "Flow is not awaiting this step"
	ErrStore         = "Something went wrong. Please try again."

	MsgDuplicate = "This was a duplicate guess and will be ignored."
)

// SelectPuzzleRequest picks a puzzle inside a guess flow.
type SelectPuzzleRequest struct {
	PuzzleID uint `json:"puzzle_id" binding:"required"`
}

// GuessTextRequest carries the raw guess text of a flow.
type GuessTextRequest struct {
	Guess string `json:"guess" binding:"required"`
}

// DirectGuessRequest submits a guess without an interactive flow (the
// gateway's modal path already collected both values).
type DirectGuessRequest struct {
	PuzzleID uint   `json:"puzzle_id" binding:"required"`
	Guess    string `json:"guess" binding:"required"`
}

// FlowResponse describes a suspended guess flow, including the puzzle
// options when the flow awaits a selection.
type FlowResponse struct {
	FlowID    string                  `json:"flow_id"`
	State     string                  `json:"state"`
	ExpiresAt string                  `json:"expires_at"`
	Prompt    string                  `json:"prompt"`
	Options   []services.PuzzleOption `json:"options,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
