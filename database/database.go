package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/delbyte/solana-news-analysis/logging"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the single owner of price points, news items and analysis records.
// It holds one database handle for the life of the process; call Close on shutdown.
type Store struct {
	db  *gorm.DB
	log *logrus.Entry
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for server-side write timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open connects to the configured backend and runs the schema migration.
func Open(cfg config.DatabaseConfig, logger *logrus.Logger, opts ...Option) (*Store, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.Gorm(logger),
	})
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("failed to get database instance: %w", err)}
	}

	if cfg.Driver == "postgres" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	} else {
		// one file handle, reused across calls
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, &StoreError{Op: "migrate", Err: err}
	}

	s := &Store{
		db:  db,
		log: logger.WithField("component", "store"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log.WithField("driver", cfg.Driver).Info("Database connected and migrated successfully")
	return s, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, &StoreError{Op: "open", Err: fmt.Errorf("create data directory: %w", err)}
			}
		}
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("unsupported driver %q", cfg.Driver)}
	}
}

// Ping checks that the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return &StoreError{Op: "close", Err: err}
	}
	if err := sqlDB.Close(); err != nil {
		return &StoreError{Op: "close", Err: err}
	}
	return nil
}
