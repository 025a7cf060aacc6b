package config

import (
	"os"
	"time"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins string

	// NEIS open-data API
	NEISAPIKey  string
	NEISBaseURL string
	NEISTimeout time.Duration

	// Supabase (Postgres storage + auth)
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	SupabaseDBURL     string

	// Discrete DB parts, used when SUPABASE_DB_URL is not set
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000, http://localhost:5173, https://meal.newme.dev"),

		NEISAPIKey:  getEnv("NEIS_API_KEY", "sample"),
		NEISBaseURL: getEnv("NEIS_BASE_URL", "https://open.neis.go.kr/hub"),
		NEISTimeout: parseDuration(getEnv("NEIS_TIMEOUT", "10s")),

		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:   getEnv("SUPABASE_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseDBURL:     getEnv("SUPABASE_DB_URL", ""),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),
	}
}

// DSN returns the Postgres connection string, preferring the full
// SUPABASE_DB_URL over the discrete DB_* parts.
func (c *Config) DSN() string {
	if c.SupabaseDBURL != "" {
		return c.SupabaseDBURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// StoreConfigured reports whether any Postgres connection info is present.
// Without it the server still runs, but store-backed endpoints answer 503.
func (c *Config) StoreConfigured() bool {
	return c.SupabaseDBURL != "" || c.DBHost != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
