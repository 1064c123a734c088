package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"notas/docs"
	"notas/internal/auth"
	"notas/internal/config"
	apperrors "notas/internal/errors"
	"notas/internal/handler"
	"notas/internal/logging"
	"notas/internal/storage"
)

// Register wires routes and middleware. Every API route is served both at
// the root and under /api.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *slog.Logger,
	guard *auth.Guard,
	authHandler *handler.AuthHandler,
	noteHandler *handler.NoteHandler,
) {
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", handler.Healthz)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if cfg.Storage.Driver == config.StorageLocal {
		e.Static(storage.PublicPrefix, cfg.Storage.Root)
	}

	for _, g := range []*echo.Group{e.Group(""), e.Group("/api")} {
		mount(g, guard, authHandler, noteHandler)
	}
}

// Guards are attached per route: group level middleware would also answer
// unknown paths under the group.
func mount(g *echo.Group, guard *auth.Guard, authHandler *handler.AuthHandler, noteHandler *handler.NoteHandler) {
	required := guard.Required()

	// Public routes
	g.GET("/pong", handler.Pong)
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)
	g.POST("/logout", authHandler.Logout, guard.Optional())

	// Secured routes
	g.GET("/me", authHandler.Me, required)
	g.GET("/notas", noteHandler.Index, required)
	g.POST("/notas", noteHandler.Store, required)
	g.GET("/notas/:id", noteHandler.Show, required)
	g.PUT("/notas/:id", noteHandler.Update, required)
	g.DELETE("/notas/:id", noteHandler.Destroy, required)
}

// ErrorHandler renders every error, including framework ones such as
// unknown routes or recovered panics, as an errors.ErrorResponse.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := apperrors.ErrorResponse{Error: "internal server error"}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch msg := he.Message.(type) {
			case apperrors.ErrorResponse:
				body = msg
			case string:
				body.Error = msg
			default:
				body.Error = http.StatusText(code)
			}
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"err", err,
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}
		if writeErr != nil {
			logger.Error("write error response", "err", writeErr)
		}
	}
}
