package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend/local"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend/postgres"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/casestudy"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/config"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/profile"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/router"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/session"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// init logger
	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-opofit", "backend", cfg.Backend, "addr", cfg.HTTPAddr)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		sugar.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	issuer, err := session.NewIssuer(cfg.SessionSecret)
	if err != nil {
		sugar.Fatalf("session issuer: %v", err)
	}

	users := user.NewService(b, issuer, sugar.Named("user"))
	users.SessionTTL = cfg.SessionTTL
	users.ProfileRetryBase = cfg.ProfileRetryBase
	profiles := profile.NewService(b.Profiles(), sugar.Named("profile"))

	if cfg.Admin.Enabled() {
		if err := provisionAdmin(ctx, users, cfg.Admin, sugar); err != nil {
			sugar.Fatalf("provision admin: %v", err)
		}
	}

	// mount http server
	handler := router.RegisterRoutes(sugar.Named("http"),
		user.NewHandler(users, sugar.Named("user")),
		profile.NewHandler(profiles, sugar.Named("profile")),
		casestudy.NewHandler(sugar.Named("casestudy")),
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Info("service is running; press Ctrl+C to stop")
	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

func openBackend(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.Database, backend.BcryptHasher{})
	default:
		ids, err := utilities.NewSnowflakeGenerator(cfg.SnowflakeNode)
		if err != nil {
			return nil, err
		}
		return local.New(backend.BcryptHasher{}, ids), nil
	}
}

func provisionAdmin(ctx context.Context, users *user.Service, admin config.Admin, logger *zap.SugaredLogger) error {
	u, created, err := users.ProvisionAdmin(ctx, admin.Name, admin.Email, admin.Password)
	if err != nil {
		return err
	}
	// a non-admin owner of the email is already reported by the service
	if !created && u.IsActiveAdmin() {
		logger.Infow("admin already provisioned", "user_id", u.ID)
	}
	return nil
}
