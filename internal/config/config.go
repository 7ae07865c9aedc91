// Package config loads storefront configuration from environment variables.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string // loopback by default, the process holds a single session
	HTTPPort        string
	BackendBaseURL  string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	StorageDriver string // sqlite or redis
	SQLitePath    string
	RedisAddr     string
	RedisPassword string

	CartPersist bool
	QueryTTL    time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CheckoutRequireIdentity bool
	SaleSuccessMessage      string

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func Load() *Config {
	return &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", "127.0.0.1"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "https://localhost:7164/api/v1/"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		SQLitePath:    getEnv("SQLITE_PATH", "storefront.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		CartPersist: getBool("CART_PERSIST", true),
		QueryTTL:    getDuration("QUERY_TTL", time.Minute),

		KafkaBrokers: getList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-invalidations"),

		CheckoutRequireIdentity: getBool("CHECKOUT_REQUIRE_IDENTITY", false),
		SaleSuccessMessage:      getEnv("SALE_SUCCESS_MESSAGE", "Add Successfully"),

		BreakerFailures: uint32(getInt("BREAKER_FAILURES", 5)),
		BreakerTimeout:  getDuration("BREAKER_TIMEOUT", 30*time.Second),
	}
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.HTTPAddr, c.HTTPPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
