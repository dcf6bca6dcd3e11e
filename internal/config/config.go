package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration, read from the environment with an
// optional .env file. Command-line flags may override individual values.
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
}

// Load reads configuration from a .env file (if present) and the environment.
// JWTSecret may be empty, in which case a persisted secret from the database
// settings table is used.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:      getenv("BIBLIO_ADDR", ":8080"),
		DBPath:    getenv("BIBLIO_DB", "biblio.sqlite3"),
		JWTSecret: os.Getenv("BIBLIO_JWT_SECRET"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
