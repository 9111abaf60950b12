package admin

import (
	"huntapi/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the organizer-only setup routes
// r: the RouterGroup to which the routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.OrganizerOnly())
	{
		adminGroup.POST("/hunt/import", h.ImportHunt)
	}
}
