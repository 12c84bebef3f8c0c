package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pasuper/supercron/pkg/config"
)

// Connection pool sizes mirror the workloads: the primary handles the
// job writes, the secondary only occasional report reads.
const (
	primaryPoolSize   = 8
	secondaryPoolSize = 2
	connMaxLifetime   = 6 * time.Hour
)

// OpenDatabases opens the primary and secondary MySQL connections.
func OpenDatabases(cfg config.DatabaseConfig) (*gorm.DB, *gorm.DB, error) {
	primary, err := open(cfg.PrimaryDSN(), primaryPoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("opening primary database: %w", err)
	}
	secondary, err := open(cfg.SecondaryDSN(), secondaryPoolSize)
	if err != nil {
		if sqlDB, derr := primary.DB(); derr == nil {
			sqlDB.Close()
		}
		return nil, nil, fmt.Errorf("opening secondary database: %w", err)
	}
	return primary, secondary, nil
}

func open(dsn string, poolSize int) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(poolSize)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}
