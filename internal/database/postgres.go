package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres opens a pool and pings it. Caller should call pool.Close().
func ConnectPostgres(ctx context.Context, url string, maxConns int32, timeout time.Duration) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if maxConns > 0 {
		pcfg.MaxConns = maxConns
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Retry calls connect up to attempts times, doubling the wait between tries
// to ride out dependencies that start after the service.
func Retry[T any](ctx context.Context, name string, attempts int, connect func(context.Context) (T, error), logf func(string, ...any)) (T, error) {
	backoff := time.Second
	var zero T
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var v T
		if v, err = connect(ctx); err == nil {
			return v, nil
		}
		logf("attempt %d/%d: failed to connect to %s: %v", attempt, attempts, name, err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return zero, fmt.Errorf("%s unavailable after %d attempts: %w", name, attempts, err)
}
