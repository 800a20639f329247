package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var once sync.Once

// Config returns the value of an environment variable, loading .env
// on first use. Missing keys resolve to an empty string.
func Config(key string) string {
	once.Do(func() {
		godotenv.Load(".env")
	})
	return os.Getenv(key)
}
