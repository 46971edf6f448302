package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripledger/internal/config"
	"tripledger/internal/database"
	"tripledger/internal/handlers"
	"tripledger/internal/repository"
	"tripledger/internal/security"
	"tripledger/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(context.Background(), cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	tokens, err := security.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tripRepo := repository.NewTripRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// Google sign-in is optional; leave it nil when not configured.
	var oauthCfg *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}

	// Invitation emails go through SES when a sender address is
	// configured; otherwise notifications only hit the log.
	var notifier service.Notifier = service.LogNotifier{}
	if cfg.SESFromEmail != "" {
		emailNotifier, err := service.NewEmailNotifier(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize email notifier: %v", err)
		} else {
			notifier = emailNotifier
		}
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens, oauthCfg)
	tripService := service.NewTripService(tripRepo, memberRepo)
	memberService := service.NewMemberService(memberRepo)
	expenseService := service.NewExpenseService(expenseRepo, memberRepo)
	ledgerService := service.NewLedgerService(tripRepo, memberRepo, expenseRepo)
	invitationService := service.NewInvitationService(invitationRepo, memberRepo, tripRepo, userRepo, notifier)

	// Initialize handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService)
	tripHandler := handlers.NewTripHandler(tripService)
	memberHandler := handlers.NewMemberHandler(memberService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleOAuthCallback)

	// Trip routes
	mux.HandleFunc("POST /trips", middleware.RequireAuth(tripHandler.Create))
	mux.HandleFunc("GET /trips", middleware.RequireAuth(tripHandler.List))
	mux.HandleFunc("GET /trips/{id}", middleware.RequireAuth(tripHandler.Get))

	// Member routes
	mux.HandleFunc("GET /trips/{id}/members", middleware.RequireAuth(memberHandler.List))
	mux.HandleFunc("POST /trips/{id}/members/virtual", middleware.RequireAuth(memberHandler.AddVirtual))
	mux.HandleFunc("DELETE /trips/{id}/members/{memberId}", middleware.RequireAuth(memberHandler.Remove))
	mux.HandleFunc("PUT /trips/{id}/members/{memberId}/role", middleware.RequireAuth(memberHandler.ChangeRole))
	mux.HandleFunc("PUT /trips/{id}/members/{memberId}/contribution", middleware.RequireAuth(memberHandler.UpdateContribution))
	mux.HandleFunc("PUT /trips/{id}/contributions", middleware.RequireAuth(memberHandler.BatchUpdateContributions))

	// Expense routes
	mux.HandleFunc("POST /trips/{id}/expenses", middleware.RequireAuth(expenseHandler.Create))
	mux.HandleFunc("GET /trips/{id}/expenses", middleware.RequireAuth(expenseHandler.List))
	mux.HandleFunc("GET /trips/{id}/expenses/{expenseId}", middleware.RequireAuth(expenseHandler.Get))
	mux.HandleFunc("DELETE /trips/{id}/expenses/{expenseId}", middleware.RequireAuth(expenseHandler.Delete))

	// Ledger routes
	mux.HandleFunc("GET /trips/{id}/balances", middleware.RequireAuth(ledgerHandler.Balances))
	mux.HandleFunc("GET /trips/{id}/settlement", middleware.RequireAuth(ledgerHandler.Settlement))
	mux.HandleFunc("GET /trips/{id}/fund", middleware.RequireAuth(ledgerHandler.FundPosition))

	// Invitation routes
	mux.HandleFunc("POST /trips/{id}/invitations", middleware.RequireAuth(invitationHandler.Create))
	mux.HandleFunc("GET /trips/{id}/invitations", middleware.RequireAuth(invitationHandler.ListForTrip))
	mux.HandleFunc("GET /invitations", middleware.RequireAuth(invitationHandler.ListMine))
	mux.HandleFunc("POST /invitations/{id}/accept", middleware.RequireAuth(invitationHandler.Accept))
	mux.HandleFunc("POST /invitations/{id}/reject", middleware.RequireAuth(invitationHandler.Reject))
	mux.HandleFunc("POST /invitations/{id}/cancel", middleware.RequireAuth(invitationHandler.Cancel))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background invitation sweeper
	go sweepExpiredInvitations(invitationService, cfg.SweepInterval)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// sweepExpiredInvitations periodically marks overdue pending invitations as expired
func sweepExpiredInvitations(invitationService *service.InvitationService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := invitationService.SweepExpired(ctx)
		cancel()
		if err != nil {
			log.Printf("Error sweeping expired invitations: %v", err)
		} else if n > 0 {
			log.Printf("Marked %d invitations as expired", n)
		}
	}
}
