package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"notas/internal/config"
	"notas/internal/db"
	"notas/internal/logging"
)

// app carries what every subcommand needs once the root flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "notas",
		Short:         "Notas is a multi-tenant notes API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.Version = "0.1.0"
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML config file (default $NOTAS_CONFIG)")

	cmd.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
	)

	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

// openDB connects and migrates, dropping every table first when reset is set.
func (a *app) openDB(reset bool) (*gorm.DB, func(), error) {
	gormDB, err := db.Open(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database init: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := db.Migrate(gormDB, reset); err != nil {
		closeDB()
		return nil, nil, err
	}
	return gormDB, closeDB, nil
}
