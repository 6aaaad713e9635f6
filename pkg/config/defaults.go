// Package config provides centralized default values for the engage engine
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if valStr := os.Getenv(key); valStr != "" {
		parts := strings.Split(valStr, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				values = append(values, trimmed)
			}
		}
		if len(values) > 0 {
			log.Printf("Config override: %s=%s", key, strings.Join(values, ","))
			return values
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	DBDriver                 string
	DBDataSource             string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Tracking Configuration
	TrackingQueueShards int
	TrackingQueueDepth  int
	HighValuePages      []string
	VisitorCookieName   string
	VisitorCookieMaxAge time.Duration

	// Enrichment Configuration
	IPLookupURL       string
	GeoLookupURL      string
	EnrichmentTimeout time.Duration

	// Admin Auth Configuration
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	// Live Dashboard Configuration
	SSEHeartbeatInterval time.Duration
	LiveBoardInterval    time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DBDriver = getEnvString("ENGAGE_DB_DRIVER", "sqlite3")
	DBDataSource = getEnvString("ENGAGE_DB_DSN", "engage.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Tracking
	TrackingQueueShards = getEnvInt("TRACKING_QUEUE_SHARDS", 8)
	TrackingQueueDepth = getEnvInt("TRACKING_QUEUE_DEPTH", 256)
	HighValuePages = getEnvStringSlice("ENGAGE_HIGH_VALUE_PATHS", []string{"/partnership", "/about", "/admin"})
	VisitorCookieName = getEnvString("VISITOR_COOKIE_NAME", "visitor_id")
	VisitorCookieMaxAge = getEnvDuration("VISITOR_COOKIE_MAX_AGE", 365*24*time.Hour)

	// Enrichment
	IPLookupURL = getEnvString("IP_LOOKUP_URL", "https://api.ipify.org?format=json")
	GeoLookupURL = getEnvString("GEO_LOOKUP_URL", "https://ipapi.co/json/")
	EnrichmentTimeout = getEnvDuration("ENRICHMENT_TIMEOUT", 3*time.Second)

	// Admin Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminEmail = getEnvString("ADMIN_EMAIL", "admin@iknowag.ai")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	AdminTokenTTL = getEnvDuration("ADMIN_TOKEN_TTL", 24*time.Hour)

	// Live Dashboard
	SSEHeartbeatInterval = getEnvDuration("SSE_HEARTBEAT_INTERVAL", 30*time.Second)
	LiveBoardInterval = getEnvDuration("LIVE_BOARD_INTERVAL", 20*time.Second)
}
