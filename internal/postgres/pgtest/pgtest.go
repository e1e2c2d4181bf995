// Package pgtest starts a throwaway Postgres for integration suites.
package pgtest

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/agromarket/internal/postgres"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/goleak"
	"time"
)

const image = "postgres:16-alpine"

// Start runs a Postgres container with the schema applied and returns a pool connected to it.
func Start(ctx context.Context) (testcontainers.Container, *pgxpool.Pool, error) {
	container, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("agromarket"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tcpostgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("container.ConnectionString: %w", err)
	}

	pool, err := postgres.Connect(ctx, connStr)
	if err != nil {
		return container, nil, fmt.Errorf("postgres.Connect: %w", err)
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return container, nil, fmt.Errorf("postgres.Migrate: %w", err)
	}

	return container, pool, nil
}

// Truncate empties every table between test cases.
func Truncate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE TABLE order_items, orders, cart_items, products CASCADE")
	return err
}

// LeakOptions ignores the goroutines the container runtime client keeps around.
func LeakOptions() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyContainingPkg("github.com/testcontainers/testcontainers-go"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	}
}
