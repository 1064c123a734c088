package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"notas/internal/auth"
	"notas/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the bearer token issued on login.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the bearer token if one is presented. Always succeeds.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var identity *auth.Identity
	if id, ok := auth.IdentityFrom(c); ok {
		identity = &id
	}

	if err := h.authService.Logout(c.Request().Context(), identity); err != nil {
		// the token simply stays valid until it expires
		h.logger.WarnContext(c.Request().Context(), "logout without revocation", "err", err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.WhoAmI(c.Request().Context(), identity)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}
