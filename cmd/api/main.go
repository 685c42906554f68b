package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	"library-backend/pkg/logger"
)

func main() {
	// Load từ .env file (development/local)
	// Production sẽ dùng system environment variables
	envErr := godotenv.Load()

	env := getEnv("APP_ENV", config.EnvDevelopment)
	logger.Init(env, os.Getenv("LOG_LEVEL"))

	if envErr != nil {
		log.Debug().Msg("No .env file found, using system environment variables")
	}

	if env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Str("environment", env).Msg("🌍 Starting library API")

	Serve()
}

// getEnv lấy environment variable với fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
