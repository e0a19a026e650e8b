package config

import (
	"fmt"

	_ "github.com/lib/pq" // "postgres" database/sql driver
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"route_tracker/internal/logger"
	"route_tracker/internal/models"
)

// DSN builds the Postgres data source name from cfg.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}

// OpenDB connects to Postgres and migrates the key-value table.
// DB_DRIVER selects the database/sql driver: pgx (default) or postgres
// for lib/pq.
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: cfg.DBDriver,
		DSN:        cfg.DSN(),
	}), &gorm.Config{Logger: logger.GormLogger()})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":   cfg.DBHost,
		"db":     cfg.DBName,
		"driver": cfg.DBDriver,
	}).Info("Config: database connected")
	return db, nil
}
