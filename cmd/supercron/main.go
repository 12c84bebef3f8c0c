package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pasuper/supercron/pkg/config"
	"github.com/pasuper/supercron/pkg/esl"
	"github.com/pasuper/supercron/pkg/ftputil"
	"github.com/pasuper/supercron/pkg/handlers"
	"github.com/pasuper/supercron/pkg/mailer"
	"github.com/pasuper/supercron/pkg/repository"
	"github.com/pasuper/supercron/pkg/scheduler"
	"github.com/pasuper/supercron/pkg/services"
	"github.com/pasuper/supercron/pkg/sftputil"
	"github.com/pasuper/supercron/pkg/stores"
)

func main() {
	// Setup logging
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	log.Info("Starting SuperCron application")

	// Load configuration for the selected environment
	cfg, err := config.Load(environmentName())
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	applyLogLevel(cfg.LogLevel)
	log.WithField("environment", cfg.AppEnv).Info("Configuration loaded")

	// Initialize databases
	primary, secondary, err := repository.OpenDatabases(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("Failed to open databases")
	}

	// Initialize repository
	repo := repository.NewGormRepository(primary, secondary)

	// Initialize external clients
	mail := mailer.New(cfg.SMTP)
	eslClient := esl.NewClient(cfg.ESL.APIURL, cfg.ESL.PushURL, cfg.ESL.Sign)

	// Label CSVs live on the ESL vendor's FTP, store inventory exports on
	// the company FTP; each job dials its own host.
	dialStoreFTP := func() services.FTPClient {
		return ftputil.NewClient(storeFTPConfig(cfg))
	}
	dialLabelFTP := func() services.FTPClient {
		return ftputil.NewClient(labelFTPConfig(cfg))
	}
	dialSFTP := func() services.SFTPClient {
		return sftputil.NewClient(sftputil.Config{
			Hostname: cfg.NAS.Hostname,
			Username: cfg.NAS.Username,
			Password: cfg.NAS.Password,
			Port:     cfg.NAS.Port,
			Timeout:  30 * time.Second,
		})
	}

	// Initialize services
	registry := stores.All(cfg.AppEnv, cfg.SMTP.DefaultRecipient)
	labelService := services.NewLabelService(eslClient, dialLabelFTP, registry)
	exportService := services.NewExportService(repo, mail, dialSFTP, registry, cfg.SMTP.DefaultRecipient, cfg.Workers)
	unknownService := services.NewUnknownLocationService(repo, mail, cfg.SMTP.DefaultRecipient)
	diffService := services.NewDiffService(repo, mail, dialStoreFTP, registry)

	appService := services.NewAppService(repo, labelService, exportService, unknownService, diffService)

	// Initialize HTTP handlers
	handler := handlers.NewHandler(appService, cfg)

	// Scheduled jobs only run in production; other environments trigger
	// jobs through the manual endpoints.
	var sched *scheduler.Scheduler
	if cfg.AppEnv == config.EnvProduction {
		sched, err = scheduler.New(appService)
		if err != nil {
			log.WithError(err).Fatal("Failed to build scheduler")
		}
		sched.Start()
	} else {
		log.WithField("environment", cfg.AppEnv).Info("Scheduler disabled outside production")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("address", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	waitForShutdown(server, sched, appService)
}

// storeFTPConfig returns the company FTP settings serving the store
// inventory exports.
func storeFTPConfig(cfg *config.Config) ftputil.Config {
	return ftputil.Config{
		Hostname: cfg.FTP.Hostname,
		Username: cfg.FTP.Username,
		Password: cfg.FTP.Password,
		Port:     cfg.FTP.Port,
		Timeout:  30 * time.Second,
	}
}

// labelFTPConfig returns the ESL vendor FTP settings serving the label
// CSVs.
func labelFTPConfig(cfg *config.Config) ftputil.Config {
	return ftputil.Config{
		Hostname: cfg.ESL.Hostname,
		Username: cfg.ESL.Username,
		Password: cfg.ESL.Password,
		Port:     cfg.ESL.Port,
		Timeout:  30 * time.Second,
	}
}

// environmentName resolves the environment from the first positional
// argument, then APP_ENV. An empty name selects local.
func environmentName() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return os.Getenv("APP_ENV")
}

func applyLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, keeping info")
		return
	}
	log.SetLevel(parsed)
}

// waitForShutdown waits for shutdown signals and gracefully shuts down
func waitForShutdown(server *http.Server, sched *scheduler.Scheduler, appService *services.AppService) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig).Info("Received shutdown signal, initiating graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	} else {
		log.Info("HTTP server shut down successfully")
	}

	if sched != nil {
		sched.Stop()
	}

	if err := appService.Close(); err != nil {
		log.WithError(err).Error("Failed to shutdown application service")
	} else {
		log.Info("Application service shut down successfully")
	}

	log.Info("Graceful shutdown completed")
}
