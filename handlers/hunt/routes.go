package hunt

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the read-only hunt aggregation routes
// r: the RouterGroup to which the routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	hunt := r.Group("/hunt")
	{
		hunt.GET("/leaderboard", h.GetLeaderboard)
		hunt.GET("/puzzles", h.GetPuzzleDashboard)
	}
}
