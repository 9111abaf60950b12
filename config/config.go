package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the engine needs. It is built once in
// main and passed down explicitly; nothing in this package is mutable state.
type Config struct {
	Port string
	Env  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// JWTSecret signs the gateway bearer tokens. The chat gateway is the only
	// expected API client.
	JWTSecret string

	// SeedDemo loads the example hunt on first start when the puzzle table is
	// empty.
	SeedDemo bool

	MailHost     string
	MailPort     string
	MailUsername string
	MailPassword string
	// OrganizerEmail receives a notification when a team finishes the hunt.
	// Leave empty to disable.
	OrganizerEmail string
}

// Load reads the configuration from the environment, looking at a local .env
// file first. A missing .env is fine; deployments set real variables.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getenv("PORT", "8080"),
		Env:  getenv("ENV", "development"),

		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenv("POSTGRES_DB", "hunt"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SeedDemo: getenv("SEED_DEMO", "false") == "true",

		MailHost:       os.Getenv("MAIL_HOST"),
		MailPort:       getenv("MAIL_PORT", "587"),
		MailUsername:   os.Getenv("MAIL_USERNAME"),
		MailPassword:   os.Getenv("MAIL_PASSWORD"),
		OrganizerEmail: os.Getenv("ORGANIZER_EMAIL"),
	}
}

// DSN builds the postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresDB, c.PostgresPassword)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
