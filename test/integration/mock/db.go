//go:build integration

package mock

import (
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/annoylog/backend/internal/infra/db"
)

var once sync.Once
var testDb *Db

// Db is a shared in-memory SQLite database standing in for Postgres.
type Db struct {
	DbConn *gorm.DB
	models map[string]any
}

// NewDb opens the database once per process and creates the schema.
// models maps table names, as used in feature files, to their gorm models.
func NewDb(models map[string]any) *Db {
	once.Do(func() {
		testDb = open(models)
	})
	return testDb
}

func open(models map[string]any) *Db {
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	sqlDB, err := conn.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.MigrateSchema(conn); err != nil {
		panic(fmt.Sprintf("failed to migrate schema. err: %s", err.Error()))
	}

	d := &Db{DbConn: conn, models: models}
	for table, model := range models {
		if !conn.Migrator().HasTable(model) {
			panic(fmt.Sprintf("table %s was not created", table))
		}
	}
	return d
}

// ClearDB deletes every row from the known tables.
func (d *Db) ClearDB() error {
	for table, model := range d.models {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// GetModel returns the gorm model registered for table.
func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}
