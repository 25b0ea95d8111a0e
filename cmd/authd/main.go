package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keiworks/authd/internal/config"
	"github.com/keiworks/authd/internal/events"
	"github.com/keiworks/authd/internal/hash"
	"github.com/keiworks/authd/internal/httpserver"
	"github.com/keiworks/authd/internal/logging"
	"github.com/keiworks/authd/internal/middleware"
	"github.com/keiworks/authd/internal/models"
	"github.com/keiworks/authd/internal/repo"
	"github.com/keiworks/authd/internal/service"
	"github.com/keiworks/authd/internal/validate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	store := &repo.Repo{DB: db}
	hasher := hash.New(cfg.Argon2)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seed(seedCtx, store, hasher, cfg); err != nil {
		cancel()
		log.Fatalf("seed error: %v", err)
	}
	cancel()

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	svc, err := service.NewAuthService(store, hasher, producer, service.Options{
		Secret:      cfg.JWTSecret,
		AccessTTL:   cfg.AccessTTL,
		RefreshTTL:  cfg.RefreshTTL,
		DefaultRole: cfg.DefaultRole,
	})
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc:              svc,
			Validator:        validate.New(cfg.Bounds),
			ErrorKey:         cfg.ErrorKey,
			LoginMinDuration: cfg.LoginMinDuration,
		},
		Guard:  middleware.NewGuard(cfg.JWTSecret, cfg.ErrorKey),
		Prefix: cfg.RoutePrefix,
	})

	go func() {
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}

// seed makes sure the static role set exists and, when configured, creates
// the bootstrap admin account.
func seed(ctx context.Context, store *repo.Repo, hasher *hash.Hasher, cfg *config.Config) error {
	if err := store.SeedRoles(ctx, "admin", cfg.DefaultRole); err != nil {
		return err
	}

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	count, err := store.CountUsersByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	adminRole, err := store.FindRoleByName(ctx, "admin")
	if err != nil {
		return err
	}
	pwHash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return store.CreateUser(ctx, &models.User{
		Username:     cfg.AdminUsername,
		PasswordHash: pwHash,
		RoleID:       adminRole.ID,
	})
}
