// api/db/postgres.go
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/strafeup/permissions/api/config"
	logger "github.com/strafeup/permissions/api/logging"
)

var PostgresDB *gorm.DB

func InitPostgres() error {
	var err error
	PostgresDB, err = gorm.Open(postgres.Open(config.GetString("postgres.dsn")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := PostgresDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get Postgres connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping Postgres: %w", err)
	}

	logger.Info("Successfully connected to Postgres")
	return nil
}

func ClosePostgres() {
	if PostgresDB == nil {
		return
	}
	sqlDB, err := PostgresDB.DB()
	if err != nil {
		logger.Error("Error getting Postgres connection pool", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing Postgres connection", zap.Error(err))
	}
}
