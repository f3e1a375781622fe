package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath    string
	ServerPort      string
	GenerationModel string
	CleanupSchedule string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DatabasePath:    getEnv("DB_PATH", "learnloom.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		GenerationModel: getEnv("GENERATION_MODEL", "default"),
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@hourly"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
