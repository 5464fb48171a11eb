package services

import (
	"fmt"
	"log"
	"time"

	"github.com/localnerve/ascom-demandas/internal/config"
	"github.com/localnerve/ascom-demandas/internal/storage"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Database     string            `json:"database"`
	Storage      string            `json:"storage"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every dependency answered.
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck pings the database and verifies the upload directory is
// writable.
func HealthCheck(cfg *config.Config, db *gorm.DB, blobs *storage.BlobStore) HealthCheckResult {
	result := HealthCheckResult{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   make(map[string]string),
	}

	fail := func(msg string) {
		result.Status = "unhealthy"
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		fail(fmt.Sprintf("Database connection error: %v", err))
		log.Printf("Health check failed - database connection: %v", err)
	} else if err := sqlDB.Ping(); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		fail(fmt.Sprintf("Database ping failed: %v", err))
		log.Printf("Health check failed - database ping: %v", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
	}

	// Check attachment storage
	if err := blobs.Writable(); err != nil {
		result.Storage = "unwritable"
		result.Details["storage_error"] = err.Error()
		fail(fmt.Sprintf("Upload directory not writable: %v", err))
		log.Printf("Health check failed - storage: %v", err)
	} else {
		result.Storage = "ok"
		result.Details["upload_dir"] = cfg.UploadDir
	}

	return result
}
