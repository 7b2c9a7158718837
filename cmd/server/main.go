package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kdiawara/sika/internal/config"
	"github.com/kdiawara/sika/internal/db"
	"github.com/kdiawara/sika/internal/server"
	"github.com/kdiawara/sika/internal/sweeper"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Erreur connexion DB: %v", err)
	}
	if migrateOnlyFlag != nil && *migrateOnlyFlag {
		log.Println("migrations completed; exiting as requested")
		return
	}
	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background expiration sweeper: once at start, then on the interval.
	sw := sweeper.New(dbConn, cfg.SweepInterval)
	go sw.Run(ctx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn)}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
