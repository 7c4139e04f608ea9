package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsconsole/ledgersync/internal/config"
	"github.com/opsconsole/ledgersync/internal/db"
	"github.com/opsconsole/ledgersync/internal/middleware"
	"github.com/opsconsole/ledgersync/internal/reconcile"
	"github.com/opsconsole/ledgersync/internal/repository"
	"github.com/opsconsole/ledgersync/internal/spreadsheet"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	invoiceRepo := repository.NewInvoiceRepository(conn.Pool)
	expenseRepo := repository.NewExpenseRepository(conn.Pool)
	logRepo := repository.NewUploadLogRepository(conn.Pool)

	normalizer := spreadsheet.NewNormalizer(cfg.NormalizerOptions())
	service := reconcile.NewService(invoiceRepo, expenseRepo, logRepo, normalizer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	uploadOptions := reconcile.Options{
		BatchSize:  cfg.Upload.BatchSize,
		BatchDelay: cfg.Upload.BatchDelay,
	}

	mux := http.NewServeMux()
	mux.Handle("/api/uploads/finance", corsHandler.Handler(reconcile.NewHTTPHandler(service, uploadOptions)))
	mux.Handle("/api/uploads/logs", corsHandler.Handler(reconcile.NewLogsHandler(service)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      middleware.LoggingMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // large uploads reconcile inside the request
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting ledger sync server on %s", cfg.Server.Addr)
		log.Printf("Upload endpoint available at http://localhost%s/api/uploads/finance", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
