package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort          string
	DBDriver          string // postgres | sqlite | mongo | memory
	DatabaseDSN       string
	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool
	RedisAddress      string // boşsa kilitler process içinde tutulur
	JWTSecret         string
	CORSOrigins       string
	LogLevel          string
	LockTTL           time.Duration
	Currency          string
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=shop port=5432 sslmode=disable"

func Load() *Config {
	// .env yoksa sorun değil, ortam değişkenleri yeterli
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseDSN:       getEnv("DATABASE_DSN", defaultDSN),
		MongoURI:          getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGODB_DATABASE", "shop"),
		MongoTransactions: getBool("MONGO_TRANSACTIONS", true),
		RedisAddress:      getEnv("REDIS_ADDRESS", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CORSOrigins:       getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LockTTL:           getDuration("LOCK_TTL", 10*time.Second),
		Currency:          getEnv("CURRENCY", "INR"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite", "mongo", "memory":
	default:
		log.Fatalf("[FATAL] unknown DB_DRIVER %q (postgres|sqlite|mongo|memory)", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres connection for production.")
	}
	if cfg.DBDriver == "memory" {
		log.Println("[WARN] DB_DRIVER=memory keeps everything in process memory, data is lost on restart.")
	}
	if cfg.CORSOrigins == "http://localhost:3000" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value, set your own domain for production.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] %s=%q is not a valid duration, using %s", key, v, def)
		return def
	}
	return d
}
