package main

import (
	"github.com/dandori-work/fcfs-booking/internal/config"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the db with demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer func() { _ = s.Close() }()

		if err := s.InitialMigration(); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		if err := s.Seed(); err != nil {
			zap.S().Fatalw("seeding demo data", "error", err)
		}

		zap.S().Info("Db seeded")
		return nil
	},
}
