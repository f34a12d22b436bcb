package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizcard/internal/auth"
	"bizcard/internal/config"
	"bizcard/internal/httpapi"
	"bizcard/internal/models"
	"bizcard/internal/ratelimit"
	"bizcard/internal/storage"
	"bizcard/internal/store"
	"bizcard/internal/store/postgres"
	"bizcard/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	shutdownTelemetry := telemetry.Setup("bizcard", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	ctx := context.Background()

	if err := migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	st := postgres.NewStore(pool)

	if err := bootstrapAdmin(ctx, st, cfg); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	limiter := newLimiter(cfg)

	files, err := storage.NewFileStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("file store: %v", err)
	}

	handler := httpapi.NewHandler(st, limiter, files, cfg)
	root := otelhttp.NewHandler(
		httpapi.SecurityHeadersMiddleware(cfg.IsProduction(),
			httpapi.LoggingMiddleware(handler.Routes())), "bizcard")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("bizcard listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// migrate runs goose over a short-lived database/sql handle; the pgx pool
// used for serving traffic is opened separately.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return postgres.RunMigrations(ctx, db)
}

func newLimiter(cfg config.Config) ratelimit.Limiter {
	window := time.Duration(cfg.LoginWindowSeconds) * time.Second
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Printf("login rate limiting backed by redis at %s", cfg.RedisAddr)
		return ratelimit.NewRedisWindow(client, cfg.LoginMaxAttempts, window)
	}
	return ratelimit.NewSlidingWindow(cfg.LoginMaxAttempts, window)
}

// bootstrapAdmin guarantees an admin account exists after startup. It only
// provisions from config when the users table has no admin yet.
func bootstrapAdmin(ctx context.Context, st store.Store, cfg config.Config) error {
	hasAdmin, err := st.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if hasAdmin {
		return nil
	}
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		log.Print("no admin user and no bootstrap credentials configured")
		return nil
	}

	hash, err := auth.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}
	_, err = st.CreateUser(ctx, cfg.BootstrapAdminEmail, hash, models.RoleAdmin)
	if errors.Is(err, store.ErrEmailTaken) {
		// Concurrent instance won the race; fine either way.
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("bootstrap admin %s provisioned", cfg.BootstrapAdminEmail)
	return nil
}
