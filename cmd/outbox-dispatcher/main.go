package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dandori-work/fcfs-booking/internal/config"
	"github.com/dandori-work/fcfs-booking/internal/dispatcher"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/pkg/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		zap.S().Fatalw("reading configuration", "error", err)
	}

	logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
	if err != nil {
		logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger := log.InitLog(logLvl)
	defer func() { _ = logger.Sync() }()

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	zap.S().Info("Starting outbox dispatcher")
	defer zap.S().Info("Outbox dispatcher stopped")

	db, err := store.InitDB(cfg)
	if err != nil {
		zap.S().Fatalw("initializing data store", "error", err)
	}

	s := store.NewStore(db)
	defer func() { _ = s.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := dispatcher.New(s, cfg).Run(ctx); err != nil {
		zap.S().Fatalw("running dispatcher", "error", err)
	}
}
