package env

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from the first .env file found.
// Variables already present in the process environment are never overwritten.
// It returns the path that was loaded, or "" when no file exists.
func LoadEnv() string {
	envName := os.Getenv("ENV")
	if envName == "" {
		envName = "development"
	}

	locations := []string{
		filepath.Join("internal", "config", "env", fmt.Sprintf(".env.%s", envName)),
		".env",
	}

	for _, loc := range locations {
		if err := godotenv.Load(loc); err == nil {
			return loc
		}
	}
	return ""
}
