package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/api"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/archive"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/config"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/db"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/storage"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/webhook"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("[main] %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := db.Init(db.Config{Path: cfg.Database.Path}); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	docs, err := storage.NewDocumentStore(cfg.Files.StoragePath)
	if err != nil {
		return err
	}

	queue, err := core.NewFileQueueStore(db.Files)
	if err != nil {
		return err
	}

	sender := webhook.NewSender(db.Webhooks, webhook.Config{})
	sender.Start()
	defer sender.Stop()

	registry, err := core.NewPrinterRegistry(db.Printers, sender)
	if err != nil {
		return err
	}
	registry.StartPolling(core.NewTCPProber(cfg.Printers.ConnectionTimeout), cfg.Printers.StatusPollInterval)
	defer registry.Stop()

	spooler := core.NewTCPSpooler(registry, docs, cfg.Dispatch.SpoolTimeout)
	builder := core.NewJobBuilder(queue, registry)

	scheduler := core.NewJobScheduler(registry, spooler, db.Jobs, sender)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	sweeper := archive.NewSweeper(queue, docs, cfg.Retention.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	router, err := api.NewRouter(api.Deps{
		Queue:     queue,
		Registry:  registry,
		Builder:   builder,
		Scheduler: scheduler,
		Documents: docs,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
