package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local then .env from the working directory.
// Variables already set in the process environment are never overwritten,
// and .env.local wins over .env. It returns the files actually loaded.
func LoadDotEnv() []string {
	return loadDotEnv(".env.local", ".env")
}

func loadDotEnv(candidates ...string) []string {
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
