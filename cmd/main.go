package main

// railgun-ingester fetches the events and transact calls of the privacy pool contract over JSON-RPC,
// decodes them into the commitment, nullifier and transaction tables and keeps a checkpoint
// so it can resume where it stopped.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	stdsync "sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"
	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railgun-community/railgun-ingester/client/jsonrpc"
	"github.com/railgun-community/railgun-ingester/config"
	"github.com/railgun-community/railgun-ingester/decoder"
	"github.com/railgun-community/railgun-ingester/ingester"
	"github.com/railgun-community/railgun-ingester/pipeline"
	"github.com/railgun-community/railgun-ingester/store/postgres"
)

func init() {
	// always use UTC
	time.Local = time.UTC
}

func main() {
	cfg, err := config.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		slog.Error("Invalid configuration", "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("Ingester failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pgxpool.New(ctx, cfg.DB.ConnString())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(ctx); err != nil {
		return err
	}

	checkpoints := postgres.NewCheckpointStore(db)
	if cfg.DB.SkipMigrate {
		if err := checkpoints.Init(ctx); err != nil {
			return err
		}
	} else if err := postgres.Migrate(ctx, logger, db); err != nil {
		return err
	}

	laneID := cfg.LaneID()
	checkpoint, found, err := checkpoints.Load(ctx, laneID)
	if err != nil {
		return err
	}
	startBlock, pointer := pipeline.Resume(checkpoint, found, cfg.StartBlock)
	state := pipeline.State{Pointer: pointer}
	if vh, ok, err := checkpoints.LoadVerificationHash(ctx); err != nil {
		return err
	} else if ok {
		state.VerificationHash = &vh
	}
	logger.Info("Resuming",
		"laneId", laneID,
		"checkpointFound", found,
		"startBlockNumber", startBlock,
		"treeNumber", pointer.TreeNumber,
		"treePosition", pointer.TreePosition,
	)

	providers, err := cfg.RPC.Providers()
	if err != nil {
		return err
	}
	httpClient := jsonrpc.NewHTTPClient(logger, cfg.RPC.Timeout)
	clients := make([]jsonrpc.BlockchainClient, 0, len(providers))
	for _, p := range providers {
		client, err := jsonrpc.NewClient(logger, httpClient, jsonrpc.Config{
			URL:            p.URL,
			Label:          p.Label,
			Timeout:        cfg.RPC.Timeout,
			MaxRPS:         p.MaxRPS,
			MaxConcurrency: p.MaxConcurrency,
		})
		if err != nil {
			return err
		}
		clients = append(clients, client)
	}
	pool := ingester.NewProviderPool(clients, cfg.RPC.ProviderCooldown)

	scheduler := ingester.NewScheduler(ingester.SchedulerConfig{
		Initial:           cfg.Chunk.InitialSize,
		Min:               cfg.Chunk.MinSize,
		Max:               cfg.Chunk.MaxSize,
		TargetDuration:    cfg.Chunk.TargetDuration,
		BackoffMultiplier: cfg.Chunk.BackoffMultiplier,
		GrowthMultiplier:  cfg.Chunk.GrowthMultiplier,
	})

	retry := ingester.RetryPolicy{MaxRetries: cfg.RPC.MaxRetries, RetryDelay: cfg.RPC.RetryDelay}
	hasher := decoder.NewPoseidonHasher(
		ingester.PoolCaller{Pool: pool, Retry: retry, RateLimitBackoff: cfg.RPC.RateLimitBackoff},
		common.HexToAddress(cfg.PoseidonAddress),
	)
	contract := common.HexToAddress(cfg.ContractAddress)
	processor := decoder.NewProcessor(logger, contract, hasher)
	handler := pipeline.NewHandler(logger, laneID, processor, postgres.NewWriter(logger, db, checkpoints), state)

	topics := cfg.Topics
	if len(topics) == 0 {
		for _, topic := range decoder.EventTopics() {
			topics = append(topics, strings.ToLower(topic.Hex()))
		}
	}

	ing, err := ingester.New(logger, pool, scheduler, ingester.Config{
		ChainID:                cfg.ChainID,
		Concurrency:            cfg.Concurrency,
		ContractAddress:        cfg.ContractAddress,
		Topics:                 topics,
		TargetBlock:            cfg.TargetBlock,
		Retry:                  retry,
		RateLimitBackoff:       cfg.RPC.RateLimitBackoff,
		ReportProgressInterval: cfg.ReportProgressInterval,
	})
	if err != nil {
		return err
	}
	defer ing.Close()

	var metrics *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	var wg stdsync.WaitGroup
	var runErr error
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		runErr = ing.Run(ctx, startBlock, handler.HandleChunk)
	}()

	quit := make(chan os.Signal, 1)
	// handle Interrupt (ctrl-c) and Term, used by `kill` et al
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-quit:
		logger.Warn("Caught UNIX signal", "signal", s)
		ing.Cancel()
		cancel()
	case <-done:
	}

	// wait for all goroutines to finish
	wg.Wait()
	if metrics != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = metrics.Shutdown(shutdownCtx)
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
