package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetme/internal/config"
	"budgetme/internal/database"
	"budgetme/internal/handlers"
	"budgetme/internal/repository"
	"budgetme/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	familyRepo := repository.NewFamilyRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	joinRequestRepo := repository.NewJoinRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Initialize services
	audit := service.NewAuditLogger(auditRepo)
	familyService := service.NewFamilyService(db, familyRepo, joinRequestRepo, audit)
	membershipService := service.NewMembershipService(db, familyRepo, audit)
	accountService := service.NewAccountService(accountRepo, transactionRepo)
	goalService := service.NewGoalService(goalRepo, familyRepo, transactionRepo)
	contributionService := service.NewContributionService(db, accountRepo, goalRepo, transactionRepo, familyRepo, audit)

	// Initialize handlers
	middleware := handlers.NewMiddleware(cfg.JWTSecret)
	familyHandler := handlers.NewFamilyHandler(familyService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	accountHandler := handlers.NewAccountHandler(accountService)
	goalHandler := handlers.NewGoalHandler(goalService)
	contributionHandler := handlers.NewContributionHandler(contributionService)

	// Setup routes
	mux := http.NewServeMux()

	// Family routes
	mux.HandleFunc("POST /api/families", middleware.RequireAuth(familyHandler.CreateFamily))
	mux.HandleFunc("GET /api/families", middleware.RequireAuth(familyHandler.ListFamilies))
	mux.HandleFunc("GET /api/families/{id}", middleware.RequireAuth(familyHandler.GetFamily))
	mux.HandleFunc("PUT /api/families/{id}", middleware.RequireAuth(familyHandler.UpdateFamily))
	mux.HandleFunc("DELETE /api/families/{id}", middleware.RequireAuth(familyHandler.DeleteFamily))
	mux.HandleFunc("GET /api/families/{id}/members", middleware.RequireAuth(familyHandler.ListMembers))

	// Membership command routes
	mux.HandleFunc("POST /api/families/{id}/members/{userId}/role", middleware.RequireAuth(membershipHandler.ChangeRole))
	mux.HandleFunc("DELETE /api/families/{id}/members/{userId}", middleware.RequireAuth(membershipHandler.RemoveMember))
	mux.HandleFunc("POST /api/families/{id}/transfer-ownership", middleware.RequireAuth(membershipHandler.TransferOwnership))

	// Join request routes
	mux.HandleFunc("POST /api/families/{id}/join-requests", middleware.RequireAuth(familyHandler.RequestToJoin))
	mux.HandleFunc("GET /api/families/{id}/join-requests", middleware.RequireAuth(familyHandler.ListJoinRequests))
	mux.HandleFunc("POST /api/join-requests/{id}/approve", middleware.RequireAuth(familyHandler.ApproveJoinRequest))
	mux.HandleFunc("POST /api/join-requests/{id}/reject", middleware.RequireAuth(familyHandler.RejectJoinRequest))

	// Account routes
	mux.HandleFunc("POST /api/accounts", middleware.RequireAuth(accountHandler.CreateAccount))
	mux.HandleFunc("GET /api/accounts", middleware.RequireAuth(accountHandler.ListAccounts))
	mux.HandleFunc("GET /api/accounts/{id}", middleware.RequireAuth(accountHandler.GetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", middleware.RequireAuth(accountHandler.UpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", middleware.RequireAuth(accountHandler.DeleteAccount))
	mux.HandleFunc("GET /api/accounts/{id}/transactions", middleware.RequireAuth(accountHandler.ListTransactions))

	// Goal routes
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goalHandler.CreateGoal))
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goalHandler.ListGoals))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goalHandler.GetGoal))
	mux.HandleFunc("POST /api/goals/{id}/cancel", middleware.RequireAuth(goalHandler.CancelGoal))
	mux.HandleFunc("GET /api/goals/{id}/transactions", middleware.RequireAuth(goalHandler.ListTransactions))
	mux.HandleFunc("GET /api/families/{id}/goals", middleware.RequireAuth(goalHandler.ListFamilyGoals))

	// Contribution route
	mux.HandleFunc("POST /api/goals/{id}/contribute", middleware.RequireAuth(contributionHandler.Contribute))

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
}
