package auth

import (
	"errors"
	"log/slog"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "notas/internal/errors"
)

var errTokenRevoked = errors.New("token has been revoked")

// Guard resolves bearer credentials into an Identity.
type Guard struct {
	jwt    *JWTService
	tokens TokenStore
	logger *slog.Logger
}

// NewGuard creates a session guard.
func NewGuard(jwt *JWTService, tokens TokenStore, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{jwt: jwt, tokens: tokens, logger: logger}
}

// Required rejects the request with 401 unless it carries a valid,
// unrevoked bearer credential.
func (g *Guard) Required() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     identityContextKey,
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: g.parse,
		ErrorHandler: func(c echo.Context, err error) error {
			g.logger.Debug("rejecting request", "path", c.Path(), "err", err)
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: apperrors.ErrUnauthenticated.Error(),
			})
		},
	})
}

// Optional resolves the identity when a valid credential is present and
// lets the request through either way.
func (g *Guard) Optional() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             identityContextKey,
		TokenLookup:            "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc:         g.parse,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

func (g *Guard) parse(c echo.Context, token string) (interface{}, error) {
	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := g.tokens.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errTokenRevoked
	}
	return IdentityFromClaims(claims), nil
}
