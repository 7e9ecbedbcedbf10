package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	EvolutionBaseURL string
	EvolutionAPIKey  string
	WebhookPublicURL string
	PollSpec         string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		EvolutionBaseURL: getEnv("EVOLUTION_BASE_URL", "http://localhost:8081"),
		EvolutionAPIKey:  getEnv("EVOLUTION_API_KEY", ""),
		WebhookPublicURL: getEnv("WEBHOOK_PUBLIC_URL", ""),
		PollSpec:         getEnv("STATUS_POLL_SPEC", "@every 5s"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DBPath:           getEnv("DB_PATH", "./atendechat.db"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "atendechat"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
