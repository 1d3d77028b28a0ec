package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

type config struct {
	AppHost  string
	AppPort  string
	LogLevel string
	GRPCPort string

	StoreDriver    string
	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisCacheTTL     int

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecretKey string
	JWTExpSecond int

	LoginRateRPS   float64
	LoginRateBurst int

	SeedDemo bool
}

// parseConfig loads environment variables from a file and returns the
// application, storage, cache, messaging, auth and logging configuration.
// Variables already set in the environment win over the file.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.GRPCPort = getEnv("GRPC_PORT", "50051")

	// Storage config
	cfg.StoreDriver = getEnv("STORE_DRIVER", storeMemory)
	if cfg.StoreDriver != storeMemory && cfg.StoreDriver != storePostgres {
		return cfg, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "questlog")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config, empty host disables the profile cache
	cfg.RedisHost = getEnv("REDIS_HOST", "")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}
	if cfg.RedisCacheTTL, err = getInt("REDIS_CACHE_TTL_SECOND", "60"); err != nil {
		return
	}

	// Kafka config, no brokers disables event publishing
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "questlog.progress")

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.JWTExpSecond, err = getInt("JWT_EXP_SECOND", "86400"); err != nil {
		return
	}

	// Login rate limit per client IP
	if cfg.LoginRateRPS, err = strconv.ParseFloat(getEnv("LOGIN_RATE_RPS", "1"), 64); err != nil {
		err = fmt.Errorf("LOGIN_RATE_RPS: %w", err)
		return
	}
	if cfg.LoginRateBurst, err = getInt("LOGIN_RATE_BURST", "10"); err != nil {
		return
	}

	if cfg.SeedDemo, err = strconv.ParseBool(getEnv("SEED_DEMO", "false")); err != nil {
		err = fmt.Errorf("SEED_DEMO: %w", err)
		return
	}

	return cfg, nil
}

func (c config) postgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}
