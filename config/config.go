package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string
	DatabaseDSN      string
	KafkaBroker      string
	KafkaTopic       string
	KafkaUsername    string
	KafkaPassword    string
	CloudinaryURL    string
	PublicBaseURL    string
	CORSOrigins      string
	LogLevel         string
	DefaultAvatarURL string
	DefaultBgURL     string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:       getenv("SERVER_PORT", ":3000"),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		KafkaTopic:       os.Getenv("KAFKA_TOPIC"),
		KafkaUsername:    os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:    os.Getenv("KAFKA_PASSWORD"),
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		PublicBaseURL:    os.Getenv("PUBLIC_BASE_URL"),
		CORSOrigins:      getenv("CORS_ORIGINS", "*"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		DefaultAvatarURL: getenv("DEFAULT_AVATAR_URL", "/images/default-avatar.png"),
		DefaultBgURL:     getenv("DEFAULT_BACKGROUND_URL", "/images/default-background.png"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
