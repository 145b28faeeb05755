// Package main provides the entry point for the EV parlay service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
	"github.com/Randysweatpants/GambleBotAPI/internal/database"
	"github.com/Randysweatpants/GambleBotAPI/internal/health"
	applog "github.com/Randysweatpants/GambleBotAPI/internal/logger"
	"github.com/Randysweatpants/GambleBotAPI/internal/metrics"
	"github.com/Randysweatpants/GambleBotAPI/internal/oddsapi"
	"github.com/Randysweatpants/GambleBotAPI/internal/repository"
	"github.com/Randysweatpants/GambleBotAPI/internal/scheduler"
	"github.com/Randysweatpants/GambleBotAPI/internal/server"
	"github.com/Randysweatpants/GambleBotAPI/internal/service"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := applog.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     version,
	}).Info("EV parlay service starting")

	metrics.InitRegistry()
	metrics.UpdateBankroll(cfg.Engine.Bankroll)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection when enabled
	var (
		db          *database.DB
		resultsRepo repository.ResultRepository
	)
	if cfg.Database.Enabled {
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to create repositories")
		}
		resultsRepo = repos.Result

		appLog.Info("Database connection established")
	} else {
		appLog.Info("Database disabled; result logging unavailable")
	}

	// Initialize odds API client
	oddsClient, err := oddsapi.NewClient(cfg.OddsAPI, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create odds API client")
	}
	defer oddsClient.Close()

	// Wire services
	auditLog := applog.NewAuditLogger(appLog)
	scanSvc := service.NewScanService(oddsClient, cfg, appLog, auditLog)
	hub := server.NewHub(func(r *http.Request) bool { return true })

	scanSvc.SetBroadcaster(hub)

	handler := server.NewHandler(scanSvc, oddsClient, resultsRepo, appLog, auditLog)
	srv := server.New(cfg.Server, handler, hub, appLog)

	// Prometheus scrape endpoint on its own port
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Health check server
	var dbPinger health.DatabasePinger
	if db != nil {
		dbPinger = db
	}
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Commit:      commit,
		Port:        fmt.Sprintf("%d", cfg.Server.HealthPort),
		Logger:      appLog,
		DB:          dbPinger,
		Quota:       oddsClient,
	})
	if err := healthSrv.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Scheduled scans
	if cfg.Scan.Enabled {
		sched := scheduler.NewScheduler(scanSvc, appLog)
		if err := sched.ScheduleScans(cfg.Scan); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule scans")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		defer sched.Stop()

		appLog.WithField("next_run", sched.GetNextRun()).Info("Scheduled scans enabled")
	}

	// Start HTTP server
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()
	healthSrv.SetReady(true)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			appLog.WithError(err).Fatal("HTTP server failed")
		}
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	}

	// Graceful shutdown
	healthSrv.SetReady(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Error during server shutdown")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error during metrics server shutdown")
		}
	}
	cancel()

	appLog.Info("EV parlay service shut down successfully")
}
