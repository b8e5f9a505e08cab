package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xjzfwqgf/chat-web/internal/broadcast"
	"github.com/xjzfwqgf/chat-web/internal/chat"
	"github.com/xjzfwqgf/chat-web/internal/config"
	"github.com/xjzfwqgf/chat-web/internal/database"
	"github.com/xjzfwqgf/chat-web/internal/handler"
	"github.com/xjzfwqgf/chat-web/internal/identity"
	"github.com/xjzfwqgf/chat-web/internal/logger"
	"github.com/xjzfwqgf/chat-web/internal/store"
	"github.com/xjzfwqgf/chat-web/internal/user"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using environment: %v", err)
	}

	// 環境変数を読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	sugar, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer sugar.Sync()

	if err := run(cfg, sugar); err != nil {
		sugar.Errorf("❌ Server stopped: %v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, sugar *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		messages chat.Store
		users    user.Repository
	)
	if cfg.UseDatabase() {
		// データベース接続を初期化
		db, err := database.Init(ctx, cfg, sugar)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		messages = store.NewMySQL(db)
		users = user.NewMySQL(db)
	} else {
		sugar.Warn("⚠️  DB_NAME is empty, using in-memory storage")
		messages = store.NewMemory()
		users = user.NewMemory()
	}

	bus := broadcast.NewBus(cfg.SessionBuffer, sugar)
	defer bus.Close()

	chatSvc := chat.New(messages, identity.NewResolver(users, sugar), bus, sugar)
	h := handler.New(cfg, chatSvc, bus, user.NewService(users, 0), sugar)

	// CORS対応
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: c.Handler(h.SetupRouter()),
	}

	fmt.Println("========================================")
	fmt.Println("  Chat Web Server")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s\n", cfg.ServerPort)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	if cfg.UseDatabase() {
		fmt.Printf("  Database: %s@%s:%s/%s\n", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName)
	} else {
		fmt.Println("  Database: in-memory")
	}
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sugar.Info("🚀 Server started successfully")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
