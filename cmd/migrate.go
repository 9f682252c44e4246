package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jekabolt/grbpwr-analytics/config"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
	"github.com/jekabolt/grbpwr-analytics/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("cannot load a config %v", err.Error())
		}
		slog.SetDefault(log.New(os.Stdout, cfg.Logger))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cfg.DB.Automigrate = false
		db, dialect, err := store.Open(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		return store.MigrateWithContext(ctx, db.DB, dialect)
	},
}
