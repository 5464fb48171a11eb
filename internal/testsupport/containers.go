// Package testsupport starts throwaway database containers for integration
// tests and the local testcontainers command.
package testsupport

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/ascom-demandas/internal/config"
	"github.com/localnerve/ascom-demandas/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const (
	dbName     = "demandas"
	dbUser     = "ascom"
	dbPassword = "ascom-test"
)

// Database is a running database container.
type Database struct {
	Container testcontainers.Container
	Type      string
	Host      string
	Port      string
}

type dbImage struct {
	image string
	port  string
	env   map[string]string
	ready wait.Strategy
}

func imageFor(dbType string) (dbImage, error) {
	switch dbType {
	case "postgres":
		return dbImage{
			image: envOr("POSTGRES_IMAGE", "postgres:16-alpine"),
			port:  "5432",
			env: map[string]string{
				"POSTGRES_DB":       dbName,
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
			},
			ready: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		}, nil
	case "mysql", "mariadb":
		return dbImage{
			image: envOr("DB_IMAGE", "mariadb:11"),
			port:  "3306",
			env: map[string]string{
				"MARIADB_ROOT_PASSWORD": dbPassword,
				"MYSQL_ROOT_PASSWORD":   dbPassword,
				"MYSQL_DATABASE":        dbName,
				"MYSQL_USER":            dbUser,
				"MYSQL_PASSWORD":        dbPassword,
			},
			ready: wait.ForLog("ready for connections"),
		}, nil
	}
	return dbImage{}, fmt.Errorf("no container image for database type %q", dbType)
}

// StartDatabase starts a database container of dbType and waits until its
// port is reachable.
func StartDatabase(ctx context.Context, dbType string) (*Database, error) {
	img, err := imageFor(dbType)
	if err != nil {
		return nil, err
	}

	tcpPort, err := nat.NewPort("tcp", img.port)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        img.image,
			ExposedPorts: []string{string(tcpPort)},
			Env:          img.env,
			WaitingFor: wait.ForAll(
				img.ready,
				wait.ForListeningPort(tcpPort),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", dbType, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &Database{Container: container, Type: dbType, Host: host, Port: mapped.Port()}, nil
}

// Config returns a service configuration pointing at the container.
func (d *Database) Config() *config.Config {
	return &config.Config{
		Port:              "8001",
		CORSOrigins:       "*",
		MaxUploadMB:       32,
		DBType:            d.Type,
		DBHost:            d.Host,
		DBPort:            d.Port,
		DBDatabase:        dbName,
		DBUser:            dbUser,
		DBPassword:        dbPassword,
		DBConnectionLimit: 5,
		DBLogLevel:        "warn",
		Timezone:          "UTC",
	}
}

// Env is the .env content that points the server at the container.
func (d *Database) Env() map[string]string {
	return map[string]string{
		"DB_TYPE":     d.Type,
		"DB_HOST":     d.Host,
		"DB_PORT":     d.Port,
		"DB_DATABASE": dbName,
		"DB_USER":     dbUser,
		"DB_PASSWORD": dbPassword,
	}
}

// Connect opens and migrates the container database, retrying while the
// server finishes its own startup.
func (d *Database) Connect(ctx context.Context) (*gorm.DB, error) {
	cfg := d.Config()

	var lastErr error
	for i := 0; i < 30; i++ {
		db, err := database.Connect(cfg)
		if err == nil {
			if err = database.Migrate(db); err == nil {
				return db, nil
			}
			database.Close(db)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil, fmt.Errorf("database not ready after 30 attempts: %w", lastErr)
}

// Terminate stops the container. t may be nil outside of tests.
func (d *Database) Terminate(t *testing.T) {
	if d == nil || d.Container == nil {
		return
	}
	if err := d.Container.Terminate(context.Background()); err != nil {
		logMessage(t, "Failed to terminate %s: %v", d.Type, err)
	}
}

// RequireDatabase starts a container for each integration test, skipping
// in short mode or when INTEGRATION_DB is unset.
func RequireDatabase(t *testing.T) (*Database, *gorm.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dbType := os.Getenv("INTEGRATION_DB")
	if dbType == "" {
		t.Skip("Set INTEGRATION_DB=postgres or INTEGRATION_DB=mysql to run integration tests")
	}

	ctx := context.Background()
	container, err := StartDatabase(ctx, dbType)
	if err != nil {
		t.Fatalf("Failed to start database container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(t) })

	db, err := container.Connect(ctx)
	if err != nil {
		t.Fatalf("Failed to connect to database container: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	return container, db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
