package v1

import (
	"huntapi/config"
	"huntapi/flows"
	"huntapi/handlers/admin"
	"huntapi/handlers/guesses"
	"huntapi/handlers/hunt"
	"huntapi/handlers/teams"
	"huntapi/middleware"
	"huntapi/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the constructed services into route registration. Everything
// is wired in main and passed down; no package holds ambient state.
type Deps struct {
	Config  *config.Config
	Teams   *services.TeamService
	Guesses *services.GuessService
	Queries *services.QueryService
	Import  *services.ImportService
	Flows   *flows.Manager
}

// Register the endpoints for the v1 API
func Register(r *gin.Engine, deps *Deps) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	RegisterPingRoutes(v1)
	RegisterMetricsRoutes(v1)
	RegisterSwaggerRoutes(v1)

	// Everything below is gateway-authenticated and rate limited.
	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(deps.Config.JWTSecret))

	rateLimiter := middleware.NewRateLimiter(60, 20) // 60 requests per minute, burst 20 per caller
	authed.Use(middleware.RateLimiterMiddleware(rateLimiter))

	teams.RegisterRoutes(authed, teams.NewHandler(deps.Teams, deps.Flows))
	guesses.RegisterRoutes(authed, guesses.NewHandler(deps.Guesses, deps.Flows))
	hunt.RegisterRoutes(authed, hunt.NewHandler(deps.Queries, deps.Teams))
	admin.RegisterRoutes(authed, admin.NewHandler(deps.Import))
}
