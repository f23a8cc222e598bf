package db

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"photoapp/config"
	"photoapp/log"
)

const (
	maxOpenConns    = 20
	connMaxLifetime = 5 * time.Minute
)

// Open connects to the first configured database: MySQL, then Postgres,
// then SQLite.
func Open(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case cfg.MySQLDSN != "":
		parsed, err := normalizeMySQLDSN(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		l.Info("using mysql", log.SourceDB, zap.String("addr", parsed.Addr), zap.String("db", parsed.DBName))
		dialector = gormmysql.Open(parsed.FormatDSN())
	case cfg.PostgresDSN != "":
		l.Info("using postgres", log.SourceDB)
		dialector = postgres.Open(cfg.PostgresDSN)
	case cfg.SQLiteFile != "":
		l.Info("using sqlite", log.SourceDB, zap.String("file", cfg.SQLiteFile))
		dialector = sqlite.Open(cfg.SQLiteFile)
	default:
		return nil, errors.New("no database configured")
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.DebugMode {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// normalizeMySQLDSN makes sure DATETIME columns are parsed into time.Time
func normalizeMySQLDSN(dsn string) (*mysql.Config, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	parsed.ParseTime = true
	if parsed.Params == nil {
		parsed.Params = map[string]string{}
	}
	if _, ok := parsed.Params["charset"]; !ok {
		parsed.Params["charset"] = "utf8mb4"
	}
	return parsed, nil
}
