package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const memoryDSN = ":memory:"

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	Pragmas         []string
	Schema          []string
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = d }
}

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(o *Options) { o.ConnMaxIdleTime = d }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

// WithPragmas replaces the PRAGMA statements run on open. Pass none to skip
// them for non-sqlite drivers.
func WithPragmas(pragmas ...string) Option {
	return func(o *Options) { o.Pragmas = pragmas }
}

// WithSchema runs the given statements once the connection is up.
func WithSchema(stmts ...string) Option {
	return func(o *Options) { o.Schema = append(o.Schema, stmts...) }
}

func defaults() *Options {
	return &Options{
		Driver:          "sqlite3",
		DataSource:      memoryDSN,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		Pragmas: []string{
			"PRAGMA busy_timeout = 5000",
			"PRAGMA foreign_keys = ON",
		},
	}
}

func (o *Options) validate() error {
	if o.Driver == "" {
		return errors.New("database driver cannot be empty")
	}
	if o.DataSource == "" {
		return errors.New("database data source cannot be empty")
	}
	if o.RetryAttempts < 1 {
		o.RetryAttempts = 1
	}
	// Every sqlite connection to :memory: opens its own empty database.
	if o.DataSource == memoryDSN {
		o.MaxOpenConns = 1
		o.MaxIdleConns = 1
		o.ConnMaxLifetime = 0
		o.ConnMaxIdleTime = 0
	}
	return nil
}

// Open connects, retrying with linear backoff, then applies pragmas and
// schema. The returned pool is ready for queries.
func Open(ctx context.Context, opts ...Option) (*sql.DB, error) {
	options := defaults()
	for _, opt := range opts {
		opt(options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= options.RetryAttempts; attempt++ {
		db, err := connect(ctx, options)
		if err == nil {
			if err := bootstrap(ctx, db, options); err != nil {
				_ = db.Close()
				return nil, err
			}
			return db, nil
		}
		lastErr = err

		if attempt == options.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("open database: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * options.RetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", options.RetryAttempts, lastErr)
}

func connect(ctx context.Context, o *Options) (*sql.DB, error) {
	db, err := sql.Open(o.Driver, o.DataSource)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)
	db.SetConnMaxIdleTime(o.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func bootstrap(ctx context.Context, db *sql.DB, o *Options) error {
	for _, stmt := range o.Pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}
	for _, stmt := range o.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
