package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zibana-backend/internal/actions"
	"zibana-backend/internal/auth"
	"zibana-backend/internal/cache"
	"zibana-backend/internal/config"
	"zibana-backend/internal/database"
	"zibana-backend/internal/db"
	"zibana-backend/internal/handlers"
	"zibana-backend/internal/health"
	h "zibana-backend/internal/http"
	"zibana-backend/internal/middleware"
	"zibana-backend/internal/repositories"
	"zibana-backend/internal/services"
	"zibana-backend/internal/stream"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// Redis backs the session store and the active-overrides cache. The
	// engine stays up without it: cached reads fall through to Postgres and
	// session-action handlers surface handler failures.
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password); err != nil {
		log.Printf("[Main] Redis unavailable, continuing degraded: %v", err)
	}

	// Stores
	overrideRepo := repositories.NewOverrideRepository(pool)
	auditRepo := repositories.NewAuditLogRepository(pool)
	userStateRepo := repositories.NewUserStateRepository(pool)
	sessionRepo := repositories.NewSessionRepository(cache.GetClient())

	// Action handlers, one per member of the closed action type set
	registry, err := actions.NewDefaultRegistry(sessionRepo, userStateRepo)
	if err != nil {
		log.Fatalf("action registry: %v", err)
	}

	// Services
	auditStream := stream.NewHub()
	auditLogger := services.NewAuditLogger(auditRepo, auditStream)
	overrideService := services.NewOverrideService(overrideRepo, registry, auditLogger, cfg.HandlerTimeout())
	queryService := services.NewQueryService(overrideRepo, auditRepo)
	reportService := services.NewReportService()

	scheduler := services.NewExpiryScheduler(overrideService, cfg.SweepInterval())
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Archive.Enabled {
		archiver, err := services.NewAuditArchiver(cfg, auditRepo)
		if err != nil {
			log.Printf("[Main] audit archive disabled: %v", err)
		} else {
			archiver.Start()
			defer archiver.Stop()
		}
	}

	// HTTP surface
	jwtManager := auth.NewJWTManager(cfg)
	actorMiddleware := middleware.NewActorMiddleware(jwtManager)

	overrideHandler := handlers.NewOverrideHandler(overrideService, queryService)
	reportHandler := handlers.NewReportHandler(reportService, queryService)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))
	monitoringHandler := handlers.NewMonitoringHandler(pool)

	router := h.NewRouter(
		overrideHandler,
		reportHandler,
		healthHandler,
		monitoringHandler,
		auditStream,
		actorMiddleware,
	)

	handler := middleware.NewCORS(cfg)(
		middleware.PanicRecovery(
			middleware.MetricsMiddleware(router),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[Main] override engine listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Main] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[Main] shutdown error: %v", err)
	}
}
