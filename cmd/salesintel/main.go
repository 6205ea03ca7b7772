// Package main provides the sales-intel command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/skygeni/sales-intel/internal/config"
	"github.com/skygeni/sales-intel/internal/database"
	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/dataset"
	"github.com/skygeni/sales-intel/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "salesintel",
	Short: "Sales pipeline health metrics and win rate driver analysis",
	Long: "salesintel computes pipeline health metrics from closed-deal data, " +
		"fits a win rate driver model and produces ranked, actionable reports.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the shared runtime pieces every subcommand needs
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	db    *database.DB
	deals *dataset.DealRepository
	runs  *dataset.RunRepository
}

// newApp wires logger, configuration and database in the usual startup order
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		deals: dataset.NewDealRepository(db.Conn(), log),
		runs:  dataset.NewRunRepository(db.Conn(), log),
	}, nil
}

// loadDeals prefers the stored dataset and falls back to a CSV file. An
// explicit csvPath always wins.
func (a *app) loadDeals(csvPath string) ([]domain.Deal, error) {
	if csvPath == "" {
		count, err := a.deals.Count()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			a.log.Debug().Int("deals", count).Msg("Using stored dataset")
			return a.deals.GetAll()
		}
		csvPath = a.cfg.DataPath
	}
	return dataset.LoadCSV(csvPath)
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Error().Err(err).Msg("Failed to close database")
	}
}
