package auth

import (
	"time"

	"github.com/labstack/echo/v4"
)

const identityContextKey = "identity"

// Identity is the authenticated caller, resolved from the bearer credential
// by the session guard and passed explicitly to services.
type Identity struct {
	UserID    uint
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// IdentityFromClaims builds the Identity carried by validated claims.
func IdentityFromClaims(c *Claims) Identity {
	id := Identity{UserID: c.UserID, Email: c.Email, TokenID: c.ID}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// IdentityFrom returns the caller stored by the guard, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}
