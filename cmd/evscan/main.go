// Package main provides a CLI for one-off EV parlay scans.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
	applog "github.com/Randysweatpants/GambleBotAPI/internal/logger"
	"github.com/Randysweatpants/GambleBotAPI/internal/oddsapi"
	"github.com/Randysweatpants/GambleBotAPI/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
	oddsClient *oddsapi.Client

	sport         string
	books         []string
	minEV         float64
	maxLegs       int
	topN          int
	windowMinutes int
	sameGameOnly  bool
	diversify     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	scanCmd.Flags().StringVarP(&sport, "sport", "s", "", "Sport key, e.g. basketball_nba (required)")
	scanCmd.Flags().StringSliceVar(&books, "books", nil, "Restrict to these bookmaker keys (default all)")
	scanCmd.Flags().Float64Var(&minEV, "min-ev", 0, "Minimum expected value (default from config)")
	scanCmd.Flags().IntVar(&maxLegs, "max-legs", 0, "Maximum legs per parlay, 2-4 (default from config)")
	scanCmd.Flags().IntVarP(&topN, "top-n", "n", 0, "Number of parlays to print (default from config)")
	scanCmd.Flags().IntVar(&windowMinutes, "window", 0, "Event window in minutes (default from config)")
	scanCmd.Flags().BoolVar(&sameGameOnly, "same-game", false, "Restrict parlays to single games")
	scanCmd.Flags().BoolVar(&diversify, "diversify", true, "Prefer parlays with less leg overlap")
	scanCmd.MarkFlagRequired("sport")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "evscan",
	Short: "Scan sportsbook odds for positive-EV parlays",
	Long:  `Fetches live odds, strips the vig, and prints correlation-adjusted parlays ranked by expected value.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print ranked parlays",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer oddsClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		scanSvc := service.NewScanService(oddsClient, cfg, logger, nil)
		req := service.ScanRequest{
			Sport:         sport,
			Books:         books,
			MaxLegs:       maxLegs,
			TopN:          topN,
			WindowMinutes: windowMinutes,
			SameGameOnly:  sameGameOnly,
			Diversify:     diversify,
		}
		// An explicit --min-ev 0 is a real threshold, not "use the default"
		if cmd.Flags().Changed("min-ev") {
			req.MinEV = &minEV
		}
		result, err := scanSvc.Scan(ctx, req)
		if err != nil {
			return err
		}

		fmt.Println(result.Summary)
		fmt.Printf("Events: %d | Leg pool: %d\n\n", result.Events, result.PoolSize)

		if len(result.Formatted) == 0 {
			fmt.Println("No parlays cleared the EV threshold.")
			return nil
		}

		for _, p := range result.Formatted {
			fmt.Println(p.Name)
			fmt.Println(p.Body)
			fmt.Println()
		}

		fmt.Printf("Odds API quota remaining: %d\n", oddsClient.QuotaRemaining())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("evscan %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	return config.Validate(cfg)
}

func setupDependencies() error {
	logger = applog.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	logger.SetLevel(logrus.WarnLevel)

	var err error
	oddsClient, err = oddsapi.NewClient(cfg.OddsAPI, logger)
	if err != nil {
		return fmt.Errorf("failed to create odds API client: %w", err)
	}

	return nil
}
