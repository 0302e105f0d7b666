// Package db opens the relational store behind the repositories and owns its
// schema.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/annoylog/backend/config"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

const firstConnectBackoff = 500 * time.Millisecond

// Database owns the gorm handle shared by every repository.
type Database struct {
	conn   *gorm.DB
	driver string
}

// Open connects using the driver named by the URL scheme: postgres:// and
// postgresql:// go to Postgres, sqlite:// to an embedded sqlite file for
// single-node setups. The first ping is retried while the server comes up.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Database, error) {
	dialector, driver, err := dialectorFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:               queryLogger(cfg.SlowQuery),
		TranslateError:       true,
		NowFunc:              func() time.Time { return time.Now().UTC() },
		// waitReady does the pinging.
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// One writer at a time; more connections only produce SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	d := &Database{conn: conn, driver: driver}
	if err := d.waitReady(ctx, cfg.ConnectAttempts); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	slog.Info("Database connection established", "driver", driver, "max_open_conns", sqlDB.Stats().MaxOpenConnections)
	return d, nil
}

func dialectorFor(url string) (gorm.Dialector, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), "postgres", nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return nil, "", fmt.Errorf("sqlite database url needs a path")
		}
		return sqlite.Open(path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"), "sqlite", nil
	default:
		return nil, "", fmt.Errorf("unsupported database url scheme in %q", redact(url))
	}
}

// waitReady pings until the database answers, doubling the pause between
// attempts.
func (d *Database) waitReady(ctx context.Context, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := firstConnectBackoff
	var err error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = d.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		slog.Warn("Database not ready", "attempt", i, "retry_in", backoff, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("failed to ping database after %d attempts: %w", attempts, err)
}

// Conn returns the gorm handle.
func (d *Database) Conn() *gorm.DB {
	return d.conn
}

// Ping reports whether the database answers.
func (d *Database) Ping(ctx context.Context) error {
	return Ping(ctx, d.conn)
}

// Ping checks the connection behind any gorm handle.
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate brings the schema up to date.
func (d *Database) Migrate() error {
	if err := MigrateSchema(d.conn); err != nil {
		return err
	}
	slog.Info("Database schema migrated", "driver", d.driver)
	return nil
}

// Close releases the pool.
func (d *Database) Close() error {
	sqlDB, err := d.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MigrateSchema creates or updates every table the repositories use. The
// local_kv table belongs to the sqlite local store and is migrated there.
func MigrateSchema(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&model.UserModel{},
		&model.RefreshTokenModel{},
		&model.PasswordResetTokenModel{},
		&model.CategoryModel{},
		&model.EntryModel{},
		&model.SubscriptionModel{},
		&model.GuestMigrationModel{},
		&model.OutboundMailModel{},
	); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// queryLogger routes gorm's warnings and slow queries through slog.
func queryLogger(slow time.Duration) logger.Interface {
	if slow <= 0 {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)
}

// redact hides credentials in a database URL before it is logged.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "<invalid>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***" + rest[at:]
	}
	return scheme + "://" + rest
}
