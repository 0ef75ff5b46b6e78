package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Server
	Port        string
	FrontendURL string

	// Database (optional; empty means no persistence)
	DatabaseURL string

	// Redis (optional; empty means no live snapshot slot)
	RedisURL string

	// Simulation
	CanvasWidth      float64
	CanvasHeight     float64
	MaxBalls         int
	SpawnIntervalMS  int
	TickRate         int
	SnapshotInterval int // seconds between live snapshot writes

	// Security
	JWTSecret      string
	AdminTokenHash string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Simulation
		CanvasWidth:      getEnvFloat("CANVAS_WIDTH", 1920),
		CanvasHeight:     getEnvFloat("CANVAS_HEIGHT", 1080),
		MaxBalls:         getEnvInt("MAX_BALLS", 24),
		SpawnIntervalMS:  getEnvInt("SPAWN_INTERVAL_MS", 1500),
		TickRate:         getEnvInt("TICK_RATE", 60),
		SnapshotInterval: getEnvInt("SNAPSHOT_INTERVAL_SECONDS", 10),

		// Security
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
