package teams

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"huntapi/flows"
	"huntapi/metrics"
	"huntapi/middleware"
	"huntapi/services"

	"github.com/gin-gonic/gin"
)

// Handler exposes the team directory to the chat gateway. Multi-step
// commands (create, delete) run through explicit flows so that a timeout or
// decline aborts before anything touches the store.
type Handler struct {
	teams *services.TeamService
	flows *flows.Manager
}

func NewHandler(teams *services.TeamService, fm *flows.Manager) *Handler {
	return &Handler{teams: teams, flows: fm}
}

// GetMembership resolves the caller's team membership
// @Summary Look up the caller's membership
// @Description Resolve the relayed identity to its solver and live team
// @Tags Teams
// @Produce json
// @Success 200 {object} MembershipResponse
// @Failure 404 {object} map[string]string
// @Router /teams/membership [get]
// @Security Bearer
func (h *Handler) GetMembership(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	member, err := h.teams.LookupMembership(identity)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrStoreUnavailable)
		return
	}
	if member == nil {
		respondWithError(c, http.StatusNotFound, ErrNotAMember)
		return
	}

	c.JSON(http.StatusOK, MembershipResponse{
		TeamID:    member.Team.ID,
		TeamName:  member.Team.Name,
		IsCaptain: member.IsCaptain,
	})
}

// StartCreateFlow opens a team-creation flow
// @Summary Start team creation
// @Description Open a name-entry flow; fails if the caller is already on a team
// @Tags Teams
// @Produce json
// @Success 200 {object} FlowResponse
// @Failure 409 {object} map[string]string
// @Router /teams/flows/create [post]
// @Security Bearer
func (h *Handler) StartCreateFlow(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	member, err := h.teams.LookupMembership(identity)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrStoreUnavailable)
		return
	}
	if member != nil {
		if member.IsCaptain {
			respondWithError(c, http.StatusConflict, ErrAlreadyCaptain)
		} else {
			respondWithError(c, http.StatusConflict, ErrAlreadyMember)
		}
		return
	}

	f := h.flows.Start(identity, flows.KindTeamCreate, flows.AwaitingInput, flows.InputTimeout)
	c.JSON(http.StatusOK, flowResponse(f, "Please enter the name of your team (max. 30 characters):"))
}

// SubmitTeamName records the proposed name and asks for confirmation
// @Summary Submit a proposed team name
// @Tags Teams
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Param request body NameRequest true "Proposed team name"
// @Success 200 {object} FlowResponse
// @Failure 400 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /teams/flows/{flow_id}/name [post]
// @Security Bearer
func (h *Handler) SubmitTeamName(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	f, err := h.flows.Take(c.Param("flow_id"), identity, flows.AwaitingInput)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	if len([]rune(req.Name)) > maxTeamNameLength {
		respondWithError(c, http.StatusBadRequest,
			fmt.Sprintf("%s (%d characters). Please start over.", ErrTeamNameTooLong, len([]rune(req.Name))))
		h.flows.Cancel(f.ID, identity)
		return
	}

	f, err = h.flows.Advance(f.ID, flows.AwaitingConfirmation, flows.ConfirmTimeout, map[string]string{"name": req.Name})
	if err != nil {
		respondFlowError(c, err)
		return
	}

	prompt := fmt.Sprintf("Team name %q has been set. Is this correct?", req.Name)
	c.JSON(http.StatusOK, flowResponse(f, prompt))
}

// Confirm resolves the confirmation step of a create or delete flow
// @Summary Confirm or decline a pending team flow
// @Tags Teams
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow ID"
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {object} CreatedResponse
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /teams/flows/{flow_id}/confirm [post]
// @Security Bearer
func (h *Handler) Confirm(c *gin.Context) {
	identity, displayName, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	f, err := h.flows.Take(c.Param("flow_id"), identity, flows.AwaitingConfirmation)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	// The flow reaches its terminal state either way.
	h.flows.Finish(f.ID)

	switch f.Kind {
	case flows.KindTeamCreate:
		if !req.Confirmed {
			c.JSON(http.StatusOK, gin.H{"message": MsgCreationDeclined})
			return
		}
		team, err := h.teams.CreateTeam(identity, displayName, f.Data["name"])
		if err != nil {
			respondServiceError(c, err)
			return
		}
		metrics.TeamsCreated.Inc()
		c.JSON(http.StatusCreated, CreatedResponse{
			TeamID: team.ID,
			Token:  team.Token,
			Message: fmt.Sprintf(
				"Team creation successful. Other members may join using the token `%s`.", team.Token),
		})

	case flows.KindTeamDelete:
		if !req.Confirmed {
			c.JSON(http.StatusOK, gin.H{"message": MsgDeletionDeclined})
			return
		}
		teamName, err := h.teams.DeleteTeam(identity)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		metrics.TeamsDeleted.Inc()
		c.JSON(http.StatusOK, gin.H{
			"team_name": teamName,
			"message":   fmt.Sprintf("You have successfully deleted the team %q.", teamName),
		})

	default:
		respondWithError(c, http.StatusConflict, ErrFlowWrongStep)
	}
}

// Join adds the caller to the team matching the token
// @Summary Join a team by token
// @Tags Teams
// @Accept json
// @Produce json
// @Param request body JoinRequest true "Join token"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /teams/join [post]
// @Security Bearer
func (h *Handler) Join(c *gin.Context) {
	identity, displayName, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	teamName, err := h.teams.JoinTeam(identity, displayName, req.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team_name": teamName,
		"message":   fmt.Sprintf("You have successfully joined the team %q.", teamName),
	})
}

// Leave removes the caller from their team
// @Summary Leave the current team
// @Tags Teams
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/leave [post]
// @Security Bearer
func (h *Handler) Leave(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	teamName, err := h.teams.LeaveTeam(identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team_name": teamName,
		"message":   fmt.Sprintf("You have successfully left the team %q.", teamName),
	})
}

// StartDeleteFlow opens a deletion-confirmation flow
// @Summary Start team deletion
// @Description Open a confirmation flow; restricted to team captains
// @Tags Teams
// @Produce json
// @Success 200 {object} FlowResponse
// @Failure 403 {object} map[string]string
// @Router /teams/flows/delete [post]
// @Security Bearer
func (h *Handler) StartDeleteFlow(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	member, err := h.teams.LookupMembership(identity)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, ErrStoreUnavailable)
		return
	}
	if member == nil || !member.IsCaptain {
		respondWithError(c, http.StatusForbidden, ErrNotACaptain)
		return
	}

	f := h.flows.Start(identity, flows.KindTeamDelete, flows.AwaitingConfirmation, flows.ConfirmTimeout)
	prompt := fmt.Sprintf(
		"This will delete the team %q (removing all team members) and cannot be undone. Confirm?",
		member.Team.Name)
	c.JSON(http.StatusOK, flowResponse(f, prompt))
}

// CancelFlow aborts an in-progress flow with no side effects
// @Summary Cancel a pending flow
// @Tags Teams
// @Param flow_id path string true "Flow ID"
// @Success 204
// @Router /teams/flows/{flow_id} [delete]
// @Security Bearer
func (h *Handler) CancelFlow(c *gin.Context) {
	identity, _, ok := middleware.GetIdentityFromRequest(c)
	if !ok {
		return
	}

	h.flows.Cancel(c.Param("flow_id"), identity)
	c.Status(http.StatusNoContent)
}

func flowResponse(f *flows.Flow, prompt string) FlowResponse {
	return FlowResponse{
		FlowID:    f.ID,
		State:     string(f.State),
		ExpiresAt: f.Deadline.Format(time.RFC3339),
		Prompt:    prompt,
	}
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
	case errors.Is(err, services.ErrAlreadyMember):
		respondWithError(c, http.StatusConflict, ErrAlreadyMember)
	case errors.Is(err, services.ErrNotAMember):
		respondWithError(c, http.StatusNotFound, ErrNotAMember)
	case errors.Is(err, services.ErrCaptainCannotLeave):
		respondWithError(c, http.StatusForbidden, ErrCaptainLeave)
	case errors.Is(err, services.ErrNotACaptain):
		respondWithError(c, http.StatusForbidden, ErrNotACaptain)
	case errors.Is(err, services.ErrUnknownToken):
		respondWithError(c, http.StatusNotFound, ErrUnknownToken)
	default:
		respondWithError(c, http.StatusInternalServerError, ErrStoreUnavailable)
	}
}
