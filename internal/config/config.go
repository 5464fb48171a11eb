package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string
	CORSOrigins string
	MaxUploadMB int

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlite-purego, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string // silent, error, warn, info

	// Attachment storage
	UploadDir string

	// Calendar used to derive month_year keys and default report dates
	Timezone string

	// Header block printed on generated PDFs
	ReportAuthorName   string
	ReportAuthorRole   string
	ReportSecretary    string
	ReportOrganization string
}

// Load loads configuration from environment variables, after merging in
// the file named by ENV_FILE (or ./.env when present).
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8001"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 32),
		DBType:             getEnv("DB_TYPE", "sqlite"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBDatabase:         getEnv("DB_DATABASE", ""),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:  getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:         getEnv("DB_LOG_LEVEL", "info"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		Timezone:           getEnv("TIMEZONE", "America/Sao_Paulo"),
		ReportAuthorName:   getEnv("REPORT_AUTHOR_NAME", "Gustavo Ferreira Santos"),
		ReportAuthorRole:   getEnv("REPORT_AUTHOR_ROLE", "Assessor Especial 3"),
		ReportSecretary:    getEnv("REPORT_SECRETARY", "Sheila Cristina"),
		ReportOrganization: getEnv("REPORT_ORGANIZATION", "Prefeitura Municipal de Canaã dos Carajás"),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if !strings.HasPrefix(cfg.DBType, "sqlite") && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required for %s", cfg.DBType)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return cfg, nil
}

// Location resolves the configured time zone. An unknown zone falls back to
// the process local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Time zone %q not available, using local: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

// BodyLimit is the maximum accepted request body in bytes.
func (c *Config) BodyLimit() int {
	return c.MaxUploadMB * 1024 * 1024
}

// loadEnvFile merges variables from a dotenv file without overriding the
// process environment.
func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
