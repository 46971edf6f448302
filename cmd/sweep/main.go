package main

import (
	"context"
	"flag"
	"log"
	"time"

	"tripledger/internal/config"
	"tripledger/internal/database"
	"tripledger/internal/repository"
	"tripledger/internal/service"
)

// One-shot sweeper for deployments that schedule expiry via cron
// instead of the server's background ticker.
func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "Maximum time to spend sweeping")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	invitationRepo := repository.NewInvitationRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	tripRepo := repository.NewTripRepository(db)
	userRepo := repository.NewUserRepository(db)
	invitationService := service.NewInvitationService(invitationRepo, memberRepo, tripRepo, userRepo, service.LogNotifier{})

	n, err := invitationService.SweepExpired(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("Sweep complete: %d invitations marked as expired", n)
}
