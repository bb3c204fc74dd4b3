package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	RunMigrations bool
	JWTSecret     string

	// Data access
	BackendTimeout   time.Duration
	BatchChunkSize   int
	BatchConcurrency int

	// Journal derivation
	PayableAccountCode        string
	DefaultExpenseAccountCode string
	JournalApplicationCodes   []string // Application type codes whose approval derives a journal batch

	// Edge
	RateLimit          string // ulule/limiter formatted rate, e.g. "100-M"
	CORSAllowedOrigins []string

	// Document intake
	FileStorageRoot string // Empty keeps uploads in memory
	OCREndpoint     string // Empty disables extraction
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("BACKEND_TIMEOUT", "5s")
	v.SetDefault("BATCH_CHUNK_SIZE", 200)
	v.SetDefault("BATCH_CONCURRENCY", 4)
	v.SetDefault("PAYABLE_ACCOUNT_CODE", "2110")
	v.SetDefault("DEFAULT_EXPENSE_ACCOUNT_CODE", "6200")
	v.SetDefault("JOURNAL_APPLICATION_CODES", "EXP,TRP")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("FILE_STORAGE_ROOT", "")
	v.SetDefault("OCR_ENDPOINT", "")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:               v.GetString("PGSQL_URL"),
		Port:                      v.GetString("PORT"),
		IsProduction:              v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:             v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:             v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:                 v.GetString("JWT_SECRET"),
		BatchChunkSize:            v.GetInt("BATCH_CHUNK_SIZE"),
		BatchConcurrency:          v.GetInt("BATCH_CONCURRENCY"),
		PayableAccountCode:        v.GetString("PAYABLE_ACCOUNT_CODE"),
		DefaultExpenseAccountCode: v.GetString("DEFAULT_EXPENSE_ACCOUNT_CODE"),
		JournalApplicationCodes:   splitList(v.GetString("JOURNAL_APPLICATION_CODES")),
		RateLimit:                 v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:        splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		FileStorageRoot:           v.GetString("FILE_STORAGE_ROOT"),
		OCREndpoint:               v.GetString("OCR_ENDPOINT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Serving from the in-memory demo store.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	timeoutStr := v.GetString("BACKEND_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 5 * time.Second
		log.Printf("Warning: Invalid value for BACKEND_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.BackendTimeout = timeout

	if cfg.BatchChunkSize <= 0 {
		cfg.BatchChunkSize = 200
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}

	return cfg, nil
}

// splitList parses a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
