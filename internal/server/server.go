// Package server assembles the echo application from its dependencies and
// runs it until the context is cancelled.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"notas/internal/auth"
	"notas/internal/cache"
	"notas/internal/config"
	"notas/internal/handler"
	"notas/internal/repository"
	"notas/internal/router"
	"notas/internal/service"
	"notas/internal/storage"
	"notas/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// New builds the echo instance with every route registered.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	gormDB *gorm.DB,
	cacheClient *cache.Client,
	backend storage.Backend,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	guard := auth.NewGuard(jwtService, tokenStore, logger)

	// Initialize services
	validator := validation.New()
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cacheClient, validator, logger)
	noteService := service.NewNoteService(noteRepo, storage.NewImageStore(backend), validator, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	noteHandler := handler.NewNoteHandler(noteService)

	router.Register(e, cfg, logger, guard, authHandler, noteHandler)
	return e
}

// Run serves e on addr and shuts it down gracefully once ctx is done.
func Run(ctx context.Context, e *echo.Echo, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
