package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

// SQLiteStore keeps local store keys in a single SQLite table.
type SQLiteStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenSQLiteStore opens (or creates) the database at path and migrates local_kv.
// ":memory:" gives a private in-memory store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite local store: %w", err)
	}
	// one writer; in-memory databases also live on a single connection
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite local store: %w", err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore uses an already open gorm connection.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&model.LocalKVModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local_kv: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

var _ adapter.LocalStore = (*SQLiteStore)(nil)

// Get returns the value for key and whether it was present.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row model.LocalKVModel
	result := s.db.WithContext(ctx).Where("store_key = ?", key).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("localstore.sqlite get %s: %w", key, result.Error)
	}
	return row.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	row := &model.LocalKVModel{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(row)
	if result.Error != nil {
		return fmt.Errorf("localstore.sqlite set %s: %w", key, result.Error)
	}
	return nil
}

// Remove deletes key.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&model.LocalKVModel{}, "store_key = ?", key).Error; err != nil {
		return fmt.Errorf("localstore.sqlite remove %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
