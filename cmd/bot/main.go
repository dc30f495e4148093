package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order_desk_bot/internal/config"
	"order_desk_bot/internal/convo"
	"order_desk_bot/internal/health"
	"order_desk_bot/internal/ledger"
	"order_desk_bot/internal/logging"
	"order_desk_bot/internal/mirror"
	"order_desk_bot/internal/order"
	"order_desk_bot/internal/store"
	"order_desk_bot/internal/sweeper"
	"order_desk_bot/internal/telegram"
	"order_desk_bot/internal/ticket"
)

const (
	mongoConnectTimeout     = 10 * time.Second
	mongoIndexTimeout       = 5 * time.Second
	mongoDisconnectTimeout  = 5 * time.Second
	healthShutdownTimeout   = 5 * time.Second
	sweeperShutdownTimeout  = 5 * time.Second
	telegramShutdownTimeout = 10 * time.Second
)

const ticketSequenceName = "tickets"

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	logger.WithFields(logging.Fields{
		"event":    "startup",
		"mongo_db": cfg.MongoDB,
	}).Info("configuration loaded")

	connectCtx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	mongoManager, err := store.NewManager(connectCtx, cfg)
	cancel()
	if err != nil {
		logger.WithError(err).Error("mongo connection error")
		fmt.Fprintf(os.Stderr, "mongo connection error: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("event", "mongo_connect").Info("connected to mongo")

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), mongoIndexTimeout)
	if err := mongoManager.EnsureBaseIndexes(indexCtx); err != nil {
		cancelIndexes()
		logger.WithError(err).Error("mongo index setup error")
		fmt.Fprintf(os.Stderr, "mongo index setup error: %v\n", err)
		os.Exit(1)
	}
	cancelIndexes()

	logger.WithField("event", "mongo_indexes").Info("ensured base mongo indexes")

	balances := ledger.New(mongoManager.Users(), nil, logger)
	orders := order.NewRegister(mongoManager.Orders(), balances, logger)
	ticketIDs := store.NewSequence(mongoManager.Counters(), ticketSequenceName)
	tickets := ticket.NewRegister(mongoManager.Tickets(), ticketIDs, logger)
	mirrors := mirror.NewRegistry(mongoManager.Mirrors(), logger)
	conversations := convo.NewTracker()
	statsProvider := store.NewStatsProvider(mongoManager.Users(), mongoManager.Orders(), mongoManager.Tickets())

	banSweeper := sweeper.New(mongoManager.Users(), logger)
	if err := banSweeper.Start(); err != nil {
		logger.WithError(err).Error("ban sweeper setup error")
		fmt.Fprintf(os.Stderr, "ban sweeper setup error: %v\n", err)
		os.Exit(1)
	}

	healthServer := health.NewServer(cfg.HTTPPort, mongoManager, logger)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil {
			logger.WithError(err).Error("health server error")
		}
	}()

	tgClient, err := telegram.NewClient(cfg, logger,
		telegram.WithLedger(balances),
		telegram.WithOrders(orders),
		telegram.WithTickets(tickets),
		telegram.WithMirrors(mirrors),
		telegram.WithConversations(conversations),
		telegram.WithStatsProvider(statsProvider),
	)
	if err != nil {
		logger.WithError(err).Error("telegram client setup error")
		fmt.Fprintf(os.Stderr, "telegram client setup error: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("event", "telegram_ready").Info("telegram client initialized")

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())
	tgDone := make(chan struct{})

	go func() {
		tgClient.Start(telegramCtx)
		close(tgDone)
	}()

	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping telegram polling")
	case <-tgDone:
		logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
	}

	cancelTelegram()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	select {
	case <-tgDone:
	case <-waitCtx.Done():
		logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
	}
	cancelWait()

	sweepDone := banSweeper.Stop()
	sweepCtx, cancelSweep := context.WithTimeout(context.Background(), sweeperShutdownTimeout)
	select {
	case <-sweepDone.Done():
	case <-sweepCtx.Done():
		logger.WithField("event", "sweeper_shutdown_timeout").Warn("timed out waiting for ban sweeper to stop")
	}
	cancelSweep()

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), healthShutdownTimeout)
	if err := healthServer.Shutdown(healthCtx); err != nil {
		logger.WithError(err).Error("health server shutdown error")
	}
	cancelHealth()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
	if err := mongoManager.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("mongo disconnect error")
	} else {
		logger.WithField("event", "mongo_disconnect").Info("mongo client disconnected")
	}
	cancelShutdown()

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")
}
