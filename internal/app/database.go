package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/ayurwell/ayurcms/config"
)

func getDatabase(cfg config.DBConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
		cfg.Host, cfg.User, cfg.Passwd, cfg.Name, cfg.Port, time.Local.String())

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		zap.S().Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if cfg.MaxConn > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxConn)
		}
		if cfg.IdleConn > 0 {
			sqlDB.SetMaxIdleConns(cfg.IdleConn)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db
}
