package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv fills KAVYAPATH_API_URL, GEMINI_API_KEY and friends from env
// files in the working directory. Earlier files win:
// .env.<APP_ENV>.local, .env.local, .env.<APP_ENV>, .env.
// Variables already set in the process are never overwritten.
// Returns the files that were loaded.
func LoadDotEnv() []string {
	var candidates []string
	if env := os.Getenv("APP_ENV"); env != "" {
		candidates = append(candidates, ".env."+env+".local", ".env.local", ".env."+env, ".env")
	} else {
		candidates = append(candidates, ".env.local", ".env")
	}

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
