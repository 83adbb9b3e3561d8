package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gigescrow/config"
	"gigescrow/eventstore"
	"gigescrow/gateway/middleware"
	"gigescrow/native/dispute"
	"gigescrow/native/escrow"
	"gigescrow/observability/logging"
	"gigescrow/rpc"
	"gigescrow/state"
	"gigescrow/storage"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./config.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup("gigescrowd", cfg.Environment)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		logger.Error("open state database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	journalStore, err := eventstore.NewStore(cfg.EventDBPath)
	if err != nil {
		logger.Error("open event journal", "error", err)
		os.Exit(1)
	}
	defer journalStore.Close()

	manager := state.NewManager(db)
	journal := eventstore.NewJournal(journalStore, logger)

	escrowEngine := escrow.NewEngine()
	escrowEngine.SetState(manager)
	escrowEngine.SetEmitter(journal)

	params, err := cfg.DisputeParams()
	if err != nil {
		logger.Error("dispute params", "error", err)
		os.Exit(1)
	}
	disputeEngine := dispute.NewEngine()
	disputeEngine.SetState(manager)
	disputeEngine.SetEmitter(journal)
	disputeEngine.SetParams(params)
	if authority, ok, err := cfg.AuthorityAddress(); err != nil {
		logger.Error("dispute authority", "error", err)
		os.Exit(1)
	} else if ok {
		disputeEngine.SetAuthority(authority)
	}
	if treasury, ok, err := cfg.RewardTreasuryAddress(); err != nil {
		logger.Error("reward treasury", "error", err)
		os.Exit(1)
	} else if ok {
		disputeEngine.SetRewardTreasury(treasury)
	}

	obs := middleware.NewObservability(middleware.ObservabilityConfig{
		ServiceName:   "gigescrowd",
		MetricsPrefix: "gigescrow",
		LogRequests:   cfg.Environment != "production",
	}, logger)
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}, logger)

	server := rpc.NewServer(escrowEngine, disputeEngine, journalStore, cfg.RPCAuthToken)
	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Router(obs, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rpc listening", "address", cfg.RPCAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("rpc server", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
