package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration
type Config struct {
	// MariaDB / MySQL 接続設定。DB_NAME が空ならインメモリストアを使う
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"3306"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`

	// サーバー設定
	ServerPort      string        `env:"SERVER_PORT" env-default:"3001"`
	Env             string        `env:"ENV" env-default:"development"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	// CORS設定
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://127.0.0.1:3000"`

	// アップロード設定
	UploadDir      string `env:"UPLOAD_DIR" env-default:"uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	// WebSocket セッション設定
	SessionBuffer   int     `env:"SESSION_BUFFER" env-default:"256"`
	WSRatePerSecond float64 `env:"WS_RATE_PER_SECOND" env-default:"5"`
	WSRateBurst     int     `env:"WS_RATE_BURST" env-default:"10"`
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	origins := cfg.AllowedOrigins[:0]
	for _, origin := range cfg.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowedOrigins = origins

	if cfg.SessionBuffer <= 0 {
		return Config{}, fmt.Errorf("SESSION_BUFFER must be positive, got %d", cfg.SessionBuffer)
	}

	return cfg, nil
}

// UseDatabase reports whether a MySQL database is configured
func (c Config) UseDatabase() bool {
	return c.DBName != ""
}

// DSN returns the go-sql-driver/mysql data source name
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// OriginAllowed reports whether origin is in the allow list. "*" allows any origin.
func (c Config) OriginAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
