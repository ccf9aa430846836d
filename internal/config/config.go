package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the environment the soma CLI runs against.
type Config struct {
	APIURL   string // Soma REST API base URL
	WebURL   string // hosted web app, used for browser login
	Language string // display language hint sent on profile updates
}

// Load reads configuration from the environment, with a best-effort
// .env file for local development.
func Load() *Config {
	godotenv.Load() //nolint:errcheck // .env is optional

	return &Config{
		APIURL:   getEnv("SOMA_API_URL", "https://api.projectsoma.cat"),
		WebURL:   getEnv("SOMA_WEB_URL", webURLFor(getEnv("SOMA_API_URL", "https://api.projectsoma.cat"))),
		Language: getEnv("SOMA_LANGUAGE", "ca"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// webURLFor derives the web app URL from the API URL by stripping a
// leading "api." host label.
func webURLFor(apiURL string) string {
	return strings.Replace(apiURL, "://api.", "://", 1)
}
