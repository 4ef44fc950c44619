package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/inkwell/models"
)

// DSN builds the driver specific connection string unless DatabaseURI overrides it.
func (c AppConfig) DSN() string {
	if c.DatabaseURI != "" {
		return c.DatabaseURI
	}
	switch c.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable client_encoding=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, pgEncoding(c.DBCharset))
	case "sqlite":
		return fmt.Sprintf("file:%s.db?_foreign_keys=1", c.DBName)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBCharset)
	}
}

func pgEncoding(charset string) string {
	if charset == "utf8mb4" || charset == "utf8" || charset == "" {
		return "UTF8"
	}
	return charset
}

// Dialector picks the gorm dialector for the configured driver.
func (c AppConfig) Dialector() gorm.Dialector {
	switch c.DBDriver {
	case "postgres":
		return postgres.Open(c.DSN())
	case "sqlite":
		return sqlite.Open(c.DSN())
	default:
		return mysql.Open(c.DSN())
	}
}

// OpenDatabase connects using the configured dialector, sizes the pool and pings once.
// The caller owns the returned handle and must close it on shutdown.
func OpenDatabase(cfg AppConfig, log *zap.Logger) (*gorm.DB, error) {
	return OpenDialector(cfg.Dialector(), cfg.LogLevel, log)
}

// OpenDialector is OpenDatabase for an explicit dialector (tests use sqlite in memory).
func OpenDialector(dialector gorm.Dialector, level string, log *zap.Logger) (*gorm.DB, error) {
	gLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// 连接池参数：适中规模 + 更积极的连接回收
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// 启动期做一次 Ping，提前暴露网络/认证问题
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// Migrate creates missing tables, columns and foreign keys for every model.
func Migrate(db *gorm.DB) error {
	for _, model := range models.All() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto migration failed for %T: %w", model, err)
		}
	}
	return nil
}

// CloseDatabase releases the pool.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
