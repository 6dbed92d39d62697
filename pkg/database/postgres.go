package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wonny/newsalpha/backend/pkg/config"
)

// DBTX is the subset of *pgx.Conn used by repositories. Both pgx.Conn and
// pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Factory opens one connection per public operation. There is no pool:
// every WithConn call dials, runs fn and closes, whatever fn returns.
type Factory struct {
	connConfig *pgx.ConnConfig
}

// New parses the configured database URL. It does not dial.
func New(cfg *config.Config) (*Factory, error) {
	url, err := cfg.DatabaseURL()
	if err != nil {
		return nil, fmt.Errorf("resolve database url: %w", err)
	}
	return NewFromURL(url, cfg.Database.ConnectTimeout)
}

// NewFromURL builds a factory from an explicit connection string.
func NewFromURL(url string, connectTimeout time.Duration) (*Factory, error) {
	connConfig, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if connectTimeout > 0 {
		connConfig.ConnectTimeout = connectTimeout
	}
	return &Factory{connConfig: connConfig}, nil
}

// Connect dials a new connection. The caller owns it.
func (f *Factory) Connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, f.connConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// WithConn runs fn on a fresh connection and always closes it.
func (f *Factory) WithConn(ctx context.Context, fn func(ctx context.Context, db DBTX) error) error {
	conn, err := f.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	return fn(ctx, conn)
}

// Ping dials, pings and closes.
func (f *Factory) Ping(ctx context.Context) error {
	return f.WithConn(ctx, func(ctx context.Context, db DBTX) error {
		var one int
		return db.QueryRow(ctx, "SELECT 1").Scan(&one)
	})
}

// HealthCheck returns detailed health information about the database
func (f *Factory) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Healthy:   false,
		Timestamp: time.Now(),
		Host:      f.connConfig.Host,
		Database:  f.connConfig.Database,
	}

	start := time.Now()
	err := f.WithConn(ctx, func(ctx context.Context, db DBTX) error {
		return db.QueryRow(ctx, "SELECT version()").Scan(&status.ServerVersion)
	})
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.Error = err.Error()
		return status, err
	}

	status.Healthy = true
	return status, nil
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Timestamp     time.Time     `json:"timestamp"`
	ResponseTime  time.Duration `json:"response_time"`
	Host          string        `json:"host"`
	Database      string        `json:"database"`
	ServerVersion string        `json:"server_version,omitempty"`
	Error         string        `json:"error,omitempty"`
}
