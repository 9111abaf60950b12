package guesses

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes related to guess submission
// r: the RouterGroup to which the routes are added
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	guesses := r.Group("/guesses")
	{
		guesses.POST("", h.SubmitGuess)

		guesses.POST("/flows", h.StartFlow)
		guesses.POST("/flows/:flow_id/puzzle", h.SelectPuzzle)
		guesses.POST("/flows/:flow_id/guess", h.SubmitFlowGuess)
		guesses.DELETE("/flows/:flow_id", h.CancelFlow)
	}
}
