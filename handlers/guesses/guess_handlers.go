package guesses

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"huntapi/flows"
	"huntapi/metrics"
	"huntapi/middleware"
	"huntapi/services"

	"github.com/gin-gonic/gin"
)

// Handler exposes guess submission to the chat gateway, both as an
// interactive flow (select puzzle, then enter text) and as a direct call.
type Handler struct {
	guesses *services.GuessService
	flows   *flows.Manager
}

func NewHandler(guesses *services.GuessService, fm *flows.Manager) *Handler {
	return &Handler{guesses: guesses, flows: fm}
}

// StartFlow opens a guess flow with the puzzle-selection list
// @Summary Start a guess flow
// @Description Gate on membership and remaining quota, then offer the puzzle list
// @Tags Guesses
// @Produce json
// @Success 200 {object} FlowResponse
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /guesses/flows [post]
// @Security Bearer
func (h *Handler) StartFlow(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	member, err := h.guesses.LookupTeam(identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.guesses.CheckQuota(member); err != nil {
		respondServiceError(c, err)
		return
	}

	options, err := h.guesses.PuzzleOptions()
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrStore)
		return
	}

	f := h.flows.Start(identity, flows.KindGuess, flows.AwaitingSelection, flows.InputTimeout)
	c.JSON(http.StatusOK, FlowResponse{
		FlowID:    f.ID,
		State:     string(f.State),
		ExpiresAt: f.Deadline.Format(time.RFC3339),
		Prompt:    "Please select a puzzle to continue:",
		Options:   options,
	})
}

// SelectPuzzle records the puzzle choice and awaits the guess text
// @Summary Select the puzzle for a guess flow
// @Tags Guesses
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Param request body SelectPuzzleRequest true "Puzzle selection"
// @Success 200 {object} FlowResponse
// @Failure 410 {object} map[string]string
// @Router /guesses/flows/{flow_id}/puzzle [post]
// @Security Bearer
func (h *Handler) SelectPuzzle(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	var req SelectPuzzleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	f, err := h.flows.Take(c.Param("flow_id"), identity, flows.AwaitingSelection)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	f, err = h.flows.Advance(f.ID, flows.AwaitingInput, flows.InputTimeout,
		map[string]string{"puzzle_id": strconv.FormatUint(uint64(req.PuzzleID), 10)})
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, FlowResponse{
		FlowID:    f.ID,
		State:     string(f.State),
		ExpiresAt: f.Deadline.Format(time.RFC3339),
		Prompt:    "Enter a guess:",
	})
}

// SubmitFlowGuess evaluates the guess text of a flow
// @Summary Submit the guess text of a flow
// @Tags Guesses
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Param request body GuessTextRequest true "Raw guess"
// @Success 200 {object} services.GuessResult
// @Failure 410 {object} map[string]string
// @Router /guesses/flows/{flow_id}/guess [post]
// @Security Bearer
func (h *Handler) SubmitFlowGuess(c *gin.Context) {
	identity, displayName, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	var req GuessTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	f, err := h.flows.Take(c.Param("flow_id"), identity, flows.AwaitingInput)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	puzzleID, err := strconv.ParseUint(f.Data["puzzle_id"], 10, 32)
	if err != nil {
		respondWithError(c, http.StatusConflict, ErrFlowWrongStep)
		return
	}
	h.flows.Finish(f.ID)

	h.evaluate(c, identity, displayName, uint(puzzleID), req.Guess)
}

// SubmitGuess evaluates a direct guess submission
// @Summary Submit a guess directly
// @Tags Guesses
// @Accept json
// @Produce json
// @Param request body DirectGuessRequest true "Puzzle and raw guess"
// @Success 200 {object} services.GuessResult
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /guesses [post]
// @Security Bearer
func (h *Handler) SubmitGuess(c *gin.Context) {
	identity, displayName, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	var req DirectGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	h.evaluate(c, identity, displayName, req.PuzzleID, req.Guess)
}

// CancelFlow aborts a suspended guess flow
// @Summary Cancel a guess flow
// @Description Drop the flow without evaluating anything
// @Tags Guesses
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Success 200 {object} map[string]string
// @Router /guesses/flows/{flow_id} [delete]
// @Security Bearer
func (h *Handler) CancelFlow(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	h.flows.Cancel(c.Param("flow_id"), identity)
	c.JSON(http.StatusOK, gin.H{"message": "Cancelled."})
}

func (h *Handler) evaluate(c *gin.Context, identity, displayName string, puzzleID uint, raw string) {
	result, err := h.guesses.SubmitGuess(identity, displayName, puzzleID, raw)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	switch {
	case result.AlreadySolved:
		metrics.GuessesSuppressed.WithLabelValues("already_solved").Inc()
	case result.Duplicate:
		metrics.GuessesSuppressed.WithLabelValues("duplicate").Inc()
	default:
		metrics.GuessesEvaluated.WithLabelValues(string(result.Status)).Inc()
		if result.HuntSolved {
			metrics.HuntCompletions.Inc()
		}
	}

	c.JSON(http.StatusOK, result)
}

func respondFlowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, flows.ErrExpired):
		respondWithError(c, http.StatusGone, ErrFlowExpired)
	case errors.Is(err, flows.ErrWrongState):
		respondWithError(c, http.StatusConflict, ErrFlowWrongStep)
	default:
		respondWithError(c, http.StatusNotFound, ErrFlowNotFound)
	}
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAMember):
		respondWithError(c, http.StatusForbidden, ErrNotRegistered)
	case errors.Is(err, services.ErrQuotaExhausted):
		respondWithError(c, http.StatusConflict, ErrOutOfGuesses)
	case errors.Is(err, services.ErrUnknownPuzzle):
		respondWithError(c, http.StatusNotFound, ErrUnknownPuzzle)
	default:
		respondWithError(c, http.StatusInternalServerError, ErrStore)
	}
}
