package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool, pgx.Tx and pgxmock
// pools. Repositories depend on it rather than on a concrete pool.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"foodstore"`
	Password string `env:"DB_PASSWORD" envDefault:"foodstore"`
	DBName   string `env:"DB_NAME" envDefault:"foodstore"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
}

// DSN returns the PostgreSQL connection URL with credentials escaped.
func (c *PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

const (
	defaultRetryAttempts = 3
	defaultRetryBaseWait = 1 * time.Second
	retryJitterFraction  = 0.25
)

// retryBackoff returns 1s, 2s, 4s... for attempt 0, 1, 2 with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := defaultRetryBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- jitter only
	return base + jitter
}

// retry runs op up to defaultRetryAttempts times while retryable(err) holds.
func retry(ctx context.Context, logger *slog.Logger, what string, retryable func(error) bool, op func() error) error {
	var err error
	for attempt := 0; attempt < defaultRetryAttempts; attempt++ {
		if err = op(); err == nil || !retryable(err) {
			return err
		}
		if attempt == defaultRetryAttempts-1 {
			break
		}
		wait := retryBackoff(attempt)
		if logger != nil {
			logger.WarnContext(ctx, what+" failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", defaultRetryAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: context canceled during retry: %w", what, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", what, defaultRetryAttempts, err)
}

// NewPostgresPool connects and pings PostgreSQL, retrying startup failures.
func NewPostgresPool(ctx context.Context, cfg *PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	var pool *pgxpool.Pool
	always := func(error) bool { return true }
	err = retry(ctx, logger, "connect to postgres", always, func() error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
