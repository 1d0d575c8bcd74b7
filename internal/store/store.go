// Package store provides relational persistence backed by GORM.
package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// Domain errors shared by all stores.
var (
	// ErrNotFound is returned when a record is absent or not owned by
	// the caller. Ownership mismatches are deliberately reported the
	// same way so foreign records are indistinguishable from missing
	// ones.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a signup reuses an email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// DB wraps the GORM connection with an explicit lifecycle.
type DB struct {
	gorm *gorm.DB
	log  *logger.Logger
}

// Open connects to Postgres and runs schema migration.
func Open(dsn string, logg *logger.Logger) (*DB, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	d := &DB{gorm: db, log: logg}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewWithGorm wraps an already opened GORM connection and migrates the
// schema. Used by tests running against sqlite.
func NewWithGorm(db *gorm.DB, logg *logger.Logger) (*DB, error) {
	d := &DB{gorm: db, log: logg}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DB) migrate() error {
	if err := d.gorm.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.Message{},
		&model.WeatherLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Gorm returns the underlying GORM handle.
func (d *DB) Gorm() *gorm.DB { return d.gorm }

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
