package main

import (
	"os"
	"time"

	"huntapi/config"
	"huntapi/database"
	"huntapi/flows"
	"huntapi/middleware"
	v1 "huntapi/routes/v1"
	"huntapi/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Hunt API
// @version 1.0
// @description Team lifecycle and guess-evaluation engine for a puzzle hunt.
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(cw)

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	locks := services.NewTeamLocks()
	mailer := services.NewEmailService(cfg)

	deps := &v1.Deps{
		Config:  cfg,
		Teams:   services.NewTeamService(db, locks),
		Guesses: services.NewGuessService(db, locks, mailer),
		Queries: services.NewQueryService(db),
		Import:  services.NewImportService(db),
		Flows:   flows.NewManager(),
	}
	deps.Flows.StartSweeper(30 * time.Second)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})

	v1.Register(r, deps)
	middleware.UpdateSystemMetrics()

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
