package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/config"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/jupiter"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/rpc"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/server"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/storage"
	"github.com/aman-zulfiqar/solana-swap-terminal/internal/terminal"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main wires the terminal engine and serves its API with graceful shutdown
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Redis backs the price cache, settings and pub/sub events
	rclient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	// Optional ClickHouse activity log
	var activity storage.ActivityStore
	if cfg.ClickHouseAddr != "" {
		store, err := storage.NewClickHouseStore(ctx, storage.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to initialize activity store, continuing without it")
		} else {
			activity = store
		}
	}

	engine, err := terminal.NewEngine(ctx, terminal.EngineConfig{
		RPC:             rpcClient,
		Redis:           rclient,
		PriceAPIBaseURL: cfg.PriceAPIBaseURL,
		Jupiter:         jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey),
		Activity:        activity,
		PollAccounts:    cfg.AccountsPollEnabled,
		PlatformFeeBps:  cfg.PlatformFeeBps,
		PriorityFeeSOL:  cfg.PriorityFeeSOL,
		Logger:          logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create terminal engine")
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.WithError(err).Warn("engine close failed")
		}
	}()

	// Background refresh keeps watched prices inside their freshness window
	go engine.Run(ctx)

	h := &server.Handlers{
		Engine:  engine,
		DevMode: cfg.DevMode,
		Logger:  logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.APIAddr).Info("terminal api starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("terminal api failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
