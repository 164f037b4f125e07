package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port            string
	Store           string
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminKey        string
	TaxonomyFile    string
	RedisAddr       string
	ProductCacheTTL time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	UploadDir       string
	CORSOrigins     []string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() Config {
	return Config{
		Port:            getEnvOrDefault("PORT", "5000"),
		Store:           strings.ToLower(getEnvOrDefault("STORE", "mongo")),
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		AdminKey:        getEnvOrDefault("ADMIN_KEY", ""),
		TaxonomyFile:    getEnvOrDefault("TAXONOMY_FILE", ""),
		RedisAddr:       getEnvOrDefault("REDIS_ADDR", ""),
		ProductCacheTTL: getDurationEnv("PRODUCT_CACHE_TTL", 5, time.Minute),
		KafkaBrokers:    splitCSV(getEnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:      getEnvOrDefault("KAFKA_TOPIC", "storefront.orders"),
		UploadDir:       getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
		CORSOrigins:     splitCSV(getEnvOrDefault("CORS_ORIGINS", "*")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
