package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hktikhin/personal-budget/internal/domain"
)

// Driver names a supported database/sql driver
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ParseDriver validates a driver name coming from configuration
func ParseDriver(name string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(name))) {
	case DriverPostgres:
		return DriverPostgres, nil
	case DriverSQLite:
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// rebind rewrites $n placeholders for drivers that expect ?n
func (d Driver) rebind(query string) string {
	if d == DriverSQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

// amountArg encodes an amount for the driver. PostgreSQL NUMERIC takes the
// exact decimal text; SQLite stores integer minor units.
func (d Driver) amountArg(v decimal.Decimal) any {
	if d == DriverSQLite {
		return v.Shift(domain.AmountScale).IntPart()
	}
	return v.String()
}

// parseAmount decodes a stored amount read back as text
func (d Driver) parseAmount(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d == DriverSQLite {
		return v.Shift(-domain.AmountScale), nil
	}
	return v, nil
}

// DB wraps the database connection
type DB struct {
	*sql.DB
	Driver     Driver
	DataSource string
}

// Options tunes the connection pool
type Options struct {
	MaxOpenConns int
}

// NewDB creates a new database connection and verifies it with a ping.
// For PostgreSQL dataSource is a connection string such as
// "host=localhost port=5432 user=postgres password=postgres dbname=budget sslmode=disable".
// For SQLite it is a DSN built with SQLiteDSN.
func NewDB(ctx context.Context, driver Driver, dataSource string, opts Options) (*DB, error) {
	db, err := sql.Open(string(driver), dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: driver, DataSource: dataSource}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// SQLiteDSN builds a SQLite data source for the file at path, creating the
// parent directory when needed. Foreign keys are enforced on every connection.
func SQLiteDSN(path string) (string, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create db directory: %w", err)
		}
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn issues statements through a querier using the driver's placeholder style
type conn struct {
	q      querier
	driver Driver
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.driver.rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.driver.rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.driver.rebind(query), args...)
}
