package teams

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes related to team management
// r: the RouterGroup to which the routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	teams := r.Group("/teams")
	{
		teams.GET("/membership", h.GetMembership)
		teams.POST("/join", h.Join)
		teams.POST("/leave", h.Leave)

		// Multi-step flows
		teams.POST("/flows/create", h.StartCreateFlow)
		teams.POST("/flows/delete", h.StartDeleteFlow)
		teams.POST("/flows/:flow_id/name", h.SubmitTeamName)
		teams.POST("/flows/:flow_id/confirm", h.Confirm)
		teams.DELETE("/flows/:flow_id", h.CancelFlow)
	}
}
