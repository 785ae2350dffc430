package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	StoreBackend  string
	DatabaseURL   string
	RedisAddr     string
	RedisPrefix   string
	OperatorToken string
	Premium       bool
	MaxQueues     int
	RateLimitPerMinute int
	RateLimitBurst     int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	return Config{
		Port:          port,
		StoreBackend:  backend,
		DatabaseURL:   os.Getenv("DB_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPrefix:   os.Getenv("REDIS_PREFIX"),
		OperatorToken: os.Getenv("OPERATOR_TOKEN"),
		Premium:       readBool("PREMIUM_TIER", false),
		MaxQueues:     readInt("MAX_QUEUES", 2),
		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),
	}
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
