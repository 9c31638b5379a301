package db

import (
	"fmt"  // Error wrapping
	"time" // Pool lifetimes

	"wallet_ledger/internal/config" // Database settings

	"github.com/sirupsen/logrus"     // Logging library
	"gorm.io/driver/mysql"           // MySQL driver for GORM
	"gorm.io/driver/postgres"        // PostgreSQL driver for GORM
	"gorm.io/driver/sqlite"          // SQLite driver for GORM
	"gorm.io/gorm"                   // GORM ORM library
	gormlogger "gorm.io/gorm/logger" // GORM query logger
)

// Open connects to the database selected by cfg.Driver and tunes its pool
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	// Pick the dialector for the configured driver
	switch cfg.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.MySQLDSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLiteDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	level := gormlogger.Silent // Queries are only logged on request
	if cfg.Log {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// One connection: SQLite serializes writers, and in-memory databases live on a single connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	logrus.WithFields(logrus.Fields{
		"driver": cfg.Driver, // Database driver
		"host":   cfg.Host,   // Database host
		"name":   cfg.Name,   // Database name
	}).Debug("Database connection opened")
	return db, nil
}
