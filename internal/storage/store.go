package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"leadbot/internal/config"
	"leadbot/internal/leads"
)

type LeadStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

var _ leads.Store = (*LeadStore)(nil)

// driverAndDialect maps the configured store driver to the database/sql
// driver name and the goose dialect.
func driverAndDialect(driver string) (string, string, error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", "postgres", nil
	case config.DriverSQLite:
		return "sqlite", "sqlite3", nil
	default:
		return "", "", fmt.Errorf("unknown store driver %q", driver)
	}
}

func dataSourceName(cfg config.Storage) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.SQLiteDSN
	}
	db := cfg.Database
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host,
		db.Port,
		db.User,
		db.Password,
		db.Name,
		db.SSLMode,
	)
}

// Open connects to the configured database, retrying with exponential
// backoff, and applies migrations.
func Open(ctx context.Context, cfg config.Storage, logger *zap.Logger) (*LeadStore, error) {
	const operation = "storage.Open"

	db, dialect, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if err := RunMigrations(ctx, db.DB, dialect, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	logger.Info("Successfully connected to lead store")
	return NewLeadStore(db, logger), nil
}

// MigrateDown connects to the configured database and rolls back the most
// recent migration. Nothing is migrated up first.
func MigrateDown(ctx context.Context, cfg config.Storage, logger *zap.Logger) error {
	const operation = "storage.MigrateDown"

	db, dialect, err := connect(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer db.Close()

	if err := RollbackMigration(ctx, db.DB, dialect, logger); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func connect(ctx context.Context, cfg config.Storage, logger *zap.Logger) (*sqlx.DB, string, error) {
	driverName, dialect, err := driverAndDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = cfg.Database.ConnectTimeout
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to lead store...", zap.String("driver", cfg.Driver))

	var db *sqlx.DB
	err = backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, driverName, dataSourceName(cfg))
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("Lead store connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect after retries: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}
	return db, dialect, nil
}

func NewLeadStore(db *sqlx.DB, logger *zap.Logger) *LeadStore {
	return &LeadStore{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateLead stores sub as-is under a fresh identifier.
func (s *LeadStore) CreateLead(ctx context.Context, sub leads.Submission) (leads.Lead, error) {
	const query = `
        INSERT INTO leads (
            id, name, email, phone_number, budget, vehicle_wanted,
            discord_user_id, discord_username, created_at
        ) VALUES (
            :id, :name, :email, :phone_number, :budget, :vehicle_wanted,
            :discord_user_id, :discord_username, :created_at
        )
    `

	lead := leads.Lead{
		ID:         s.newID(),
		Submission: sub,
		CreatedAt:  s.now().UTC().Truncate(time.Microsecond),
	}

	if _, err := s.db.NamedExecContext(ctx, query, lead); err != nil {
		return leads.Lead{}, fmt.Errorf("failed to save lead: %w", err)
	}

	return lead, nil
}

// ListLeads returns every lead, newest first.
func (s *LeadStore) ListLeads(ctx context.Context) ([]leads.Lead, error) {
	const query = `
        SELECT id, name, email, phone_number, budget, vehicle_wanted,
               discord_user_id, discord_username, created_at
        FROM leads
        ORDER BY created_at DESC
    `

	var out []leads.Lead
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return out, nil
}

func (s *LeadStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
