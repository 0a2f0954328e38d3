package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken       string
	DBUser         string
	DBPassword     string
	DBName         string
	DBHost         string
	DBPort         string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	AdminIDs       []int64
	ReferralReward int64
	SessionTTL     time.Duration
	Environment    string
	LogLevel       string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "kibercoin_bot"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		AdminIDs:       getEnvInt64List("ADMIN_IDS"),
		ReferralReward: getEnvInt64("REFERRAL_REWARD", 7),
		SessionTTL:     time.Duration(getEnvInt64("SESSION_TTL_HOURS", 24)) * time.Hour,
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt64List(key string) []int64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return nil
	}

	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Invalid value in %s: %q, skipping", key, part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
