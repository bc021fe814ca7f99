package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asadamin236/login-system-backend/internal/config"
	apphttp "github.com/asadamin236/login-system-backend/internal/http"
	"github.com/asadamin236/login-system-backend/internal/repository"
	"github.com/asadamin236/login-system-backend/internal/repository/memory"
	"github.com/asadamin236/login-system-backend/internal/repository/postgres"
	"github.com/asadamin236/login-system-backend/internal/repository/sqlite"
	"github.com/asadamin236/login-system-backend/internal/security"
	"github.com/asadamin236/login-system-backend/internal/service"
	"github.com/asadamin236/login-system-backend/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, db, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	issuer, err := token.NewIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logger.Fatalf("setup token issuer: %v", err)
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, hasher, issuer, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, issuer, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildRepository selects the storage backend from configuration. The
// returned *sql.DB is nil for the memory backend.
func buildRepository(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, *sql.DB, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, postgres.Options{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using postgres database %s on %s", cfg.Database.Name, cfg.Database.Host)
		opTimeout := time.Duration(cfg.Database.ConnTimeoutSeconds) * time.Second
		return postgres.NewUserRepository(db, opTimeout), db, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using sqlite database at %s", cfg.Database.Path)
		return sqlite.NewUserRepository(db), db, nil

	case "memory":
		logger.Warn("using in-memory storage; all users are lost on restart")
		return memory.NewUserRepository(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
