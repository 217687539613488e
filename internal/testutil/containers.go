// Package testutil starts backing services for integration tests and local development,
// and holds shared HTTP test assertions.
package testutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/localnerve/ops-portal/internal/config"
)

// Container defaults. POSTGRES_IMAGE and DB_IMAGE override the images.
const (
	PostgresImage = "postgres:16-alpine"
	MariaDBImage  = "mariadb:11"
	TestUser      = "portal"
	TestPassword  = "portal"
	TestDatabase  = "portal"
)

// DBContainer is a running database container with a config pointing at it.
type DBContainer struct {
	Container testcontainers.Container
	Config    *config.Config
}

func imageOr(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// StartPostgres starts a Postgres container and returns a store config for it.
func StartPostgres(ctx context.Context) (*DBContainer, error) {
	return start(ctx, config.StorePostgres, "5432/tcp", testcontainers.ContainerRequest{
		Image:        imageOr("POSTGRES_IMAGE", PostgresImage),
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     TestUser,
			"POSTGRES_PASSWORD": TestPassword,
			"POSTGRES_DB":       TestDatabase,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	})
}

// StartMariaDB starts a MariaDB container and returns a store config for it.
func StartMariaDB(ctx context.Context) (*DBContainer, error) {
	return start(ctx, config.StoreMySQL, "3306/tcp", testcontainers.ContainerRequest{
		Image:        imageOr("DB_IMAGE", MariaDBImage),
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_ROOT_PASSWORD": "rootpass",
			"MARIADB_DATABASE":      TestDatabase,
			"MARIADB_USER":          TestUser,
			"MARIADB_PASSWORD":      TestPassword,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("ready for connections").WithOccurrence(2),
			wait.ForListeningPort("3306/tcp"),
		).WithDeadline(90 * time.Second),
	})
}

func start(ctx context.Context, storeType, port string, req testcontainers.ContainerRequest) (*DBContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get %s host: %w", req.Image, err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get %s port: %w", req.Image, err)
	}

	return &DBContainer{
		Container: container,
		Config: &config.Config{
			StoreType:         storeType,
			DBHost:            host,
			DBPort:            mapped.Port(),
			DBDatabase:        TestDatabase,
			DBUser:            TestUser,
			DBPassword:        TestPassword,
			DBConnectionLimit: 5,
		},
	}, nil
}

// Env returns the environment variables that point the server at this container.
func (p *DBContainer) Env() map[string]string {
	return map[string]string{
		"STORE_TYPE":  p.Config.StoreType,
		"DB_HOST":     p.Config.DBHost,
		"DB_PORT":     p.Config.DBPort,
		"DB_DATABASE": p.Config.DBDatabase,
		"DB_USER":     p.Config.DBUser,
		"DB_PASSWORD": p.Config.DBPassword,
	}
}

// Terminate stops and removes the container.
func (p *DBContainer) Terminate(ctx context.Context) error {
	return p.Container.Terminate(ctx)
}
