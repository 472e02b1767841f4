// Package testhelper starts a disposable PostgreSQL for integration tests.
package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"datacatalog/internal/infrastructure/storage/postgres"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// SetupTestDB starts a shared PostgreSQL container (once for the entire test run),
// applies the migrations, empties every table and returns a TxManager on a fresh pool.
// Tests using it are skipped with -short.
func SetupTestDB(t *testing.T) (*postgres.Pool, *postgres.TxManager) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test: skipped with -short")
	}

	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	raw, err := pgxpool.New(ctx, sharedDSN)
	if err != nil {
		t.Fatalf("testhelper: failed to create pgxpool: %v", err)
	}
	t.Cleanup(raw.Close)

	_, err = raw.Exec(ctx, `TRUNCATE audit_logs, product_tags, tags, products, refresh_tokens, idempotency_keys, users`)
	if err != nil {
		t.Fatalf("testhelper: truncate: %v", err)
	}

	pool := postgres.WrapPool(raw)
	return pool, postgres.NewTxManager(pool, postgres.DefaultTxOptions())
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	migrator, err := postgres.NewMigrator(dsn)
	if err != nil {
		return "", err
	}
	defer migrator.Close()

	if err := migrator.Up(ctx); err != nil {
		return "", err
	}
	return dsn, nil
}
