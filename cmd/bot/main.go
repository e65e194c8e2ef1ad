package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/solman/solbot/internal/auth"
	"github.com/solman/solbot/internal/bot"
	"github.com/solman/solbot/internal/gateway"
	"github.com/solman/solbot/pkg/config"
	"github.com/solman/solbot/pkg/logger"
	"github.com/solman/solbot/pkg/shutdown"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("BOT_CONFIG"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}

	if cfg.OpenMode() {
		logger.Warn("no OWNER_USER_ID set - bot is open to everyone!")
		logger.Warn("set OWNER_USER_ID to your Telegram user ID for security")
	}

	logger.Info("starting Solana token auto-buy bot")
	logger.Infof("owner id: %d", cfg.OwnerID)
	logger.Infof("authorized users: %d", len(cfg.AuthorizedUsers))
	logger.Infof("API endpoint: %s", cfg.APIBaseURL)

	authMgr := auth.NewManager(cfg.OwnerID, cfg.OpenMode(), cfg.AuthorizedUsers)
	gw := gateway.NewClient(cfg.APIBaseURL, cfg.APIKey, cfg.APITimeout(), cfg.HealthTimeout())

	tgBot, err := bot.New(cfg, authMgr, gw)
	if err != nil {
		logger.Errorf("init bot: %v", err)
		os.Exit(1)
	}

	stopped := make(chan struct{})
	go func() {
		tgBot.Run()
		close(stopped)
	}()

	mgr := shutdown.NewManager()
	mgr.OnShutdown(func(ctx context.Context, _ *sync.WaitGroup) {
		tgBot.Stop()
		select {
		case <-stopped:
		case <-ctx.Done():
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case sig := <-sigCh:
		logger.Infof("received %s, shutting down", sig)
	case <-stopped:
		logger.Warn("update loop exited on its own")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mgr.Shutdown(ctx)

	logger.Info("bot stopped")
}
