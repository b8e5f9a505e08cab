package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/xjzfwqgf/chat-web/internal/config"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username VARCHAR(64) PRIMARY KEY,
		password VARCHAR(255) NOT NULL,
		nickname VARCHAR(128) NOT NULL,
		avatar TEXT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		type VARCHAR(16) NOT NULL,
		from_user VARCHAR(64) NOT NULL,
		to_user VARCHAR(64) NULL,
		content TEXT NULL,
		file_name VARCHAR(255) NULL,
		file_size BIGINT NULL,
		file_type VARCHAR(128) NULL,
		file_url TEXT NULL,
		time VARCHAR(64) NOT NULL,
		revoked TINYINT(1) NOT NULL DEFAULT 0,
		nickname VARCHAR(128) NULL,
		avatar TEXT NULL,
		INDEX idx_messages_type_id (type, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// Init opens the MySQL connection pool, pings it and creates missing tables
func Init(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	// 接続テスト
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Infof("✅ Database connection established: %s@%s:%s/%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, nil
}

// Migrate creates the users and messages tables if they do not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
