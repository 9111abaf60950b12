package hunt

import (
	"net/http"

	"huntapi/middleware"
	"huntapi/services"

	"github.com/gin-gonic/gin"
)

const errStore = "Something went wrong. Please try again."

// Handler exposes the read-only hunt aggregations: the leaderboard and the
// puzzle dashboard. Output is structured rows; the gateway renders tables.
type Handler struct {
	queries *services.QueryService
	teams   *services.TeamService
}

func NewHandler(queries *services.QueryService, teams *services.TeamService) *Handler {
	return &Handler{queries: queries, teams: teams}
}

// GetLeaderboard ranks the registered teams
// @Summary Get the leaderboard
// @Description Non-deleted teams ordered by hunt finish, score, and last solve
// @Tags Hunt
// @Produce json
// @Success 200 {array} services.LeaderboardRow
// @Failure 500 {object} map[string]string
// @Router /hunt/leaderboard [get]
// @Security Bearer
func (h *Handler) GetLeaderboard(c *gin.Context) {
	rows, err := h.queries.Leaderboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errStore})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetPuzzleDashboard lists puzzles with global solve/guess counts
// @Summary Get the puzzle dashboard
// @Description All puzzles with global counts; the caller's team answers are
// included unless scope=global is passed (matching the public-channel view)
// @Tags Hunt
// @Produce json
// @Param scope query string false "Set to 'global' to omit the team answer column"
// @Success 200 {array} services.DashboardRow
// @Failure 500 {object} map[string]string
// @Router /hunt/puzzles [get]
// @Security Bearer
func (h *Handler) GetPuzzleDashboard(c *gin.Context) {
	var teamID *uint

	if c.Query("scope") != "global" {
		identity := c.GetString(middleware.ContextIdentity)
		if identity != "" {
			member, err := h.teams.LookupMembership(identity)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": errStore})
				return
			}
			if member != nil {
				teamID = &member.Team.ID
			}
		}
	}

	rows, err := h.queries.PuzzleDashboard(teamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errStore})
		return
	}
	c.JSON(http.StatusOK, rows)
}
