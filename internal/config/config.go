package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	JWTSecret    string
	InviteSecret string

	PusherAppID   string
	PusherKey     string
	PusherSecret  string
	PusherCluster string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
	AppURL   string

	WorkerCount  int
	WorkerBuffer int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "collabs_user"),
		DBPassword: getEnv("DB_PASSWORD", "collabs_pass"),
		DBName:     getEnv("DB_NAME", "collabs_db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		// Отдельный секрет для инвайт-токенов: сессионный токен
		// нельзя предъявить как приглашение и наоборот
		InviteSecret: getEnv("INVITE_SECRET", "invitesecretkey"),

		PusherAppID:   getEnv("PUSHER_APP_ID", ""),
		PusherKey:     getEnv("PUSHER_KEY", ""),
		PusherSecret:  getEnv("PUSHER_SECRET", ""),
		PusherCluster: getEnv("PUSHER_CLUSTER", "eu"),

		SMTPHost: getEnv("SMTP_HOST", "localhost"),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "support@collabs.com"),
		AppURL:   getEnv("APP_URL", "http://localhost:3000"),

		WorkerCount:  getEnvInt("WORKER_COUNT", 8),
		WorkerBuffer: getEnvInt("WORKER_BUFFER", 256),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}
