package database

import (
	"context"
	"fmt"
	"time"

	"yatube/internal/config"
	"yatube/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the database named by cfg.DatabaseURL: PostgreSQL for a DSN, SQLite for a file path.
func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		fields    []zap.Field
	)

	if cfg.IsPostgres() {
		pgCfg, err := pgconn.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		// log the target without the password
		fields = []zap.Field{
			zap.String("driver", "postgres"),
			zap.String("host", pgCfg.Host),
			zap.Uint16("port", pgCfg.Port),
			zap.String("database", pgCfg.Database),
			zap.String("user", pgCfg.User),
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		fields = []zap.Field{zap.String("driver", "sqlite"), zap.String("path", cfg.DatabaseURL)}
		dialector = sqlite.Open(cfg.DatabaseURL)
	}

	db, err := open(dialector, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.IsPostgres() {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Connected to the database successfully", fields...)
	return db, nil
}

// OpenSQLite opens a sqlite database at dsn with the application's gorm settings.
func OpenSQLite(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := open(sqlite.Open(dsn), logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func open(dialector gorm.Dialector, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(logger, 200*time.Millisecond),
		// unique violations surface as gorm.ErrDuplicatedKey on every driver
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
