// Package auth guards routes with the bearer-token checks: signature and
// expiry first, then the revocation lookup, so an expired token is reported
// as expired even when its store record is untouched.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/brewhollow/shop-backend/internal/logging"
	"github.com/brewhollow/shop-backend/internal/models"
	"github.com/brewhollow/shop-backend/internal/tokens"
	"github.com/brewhollow/shop-backend/internal/tokenstore"
)

const (
	ContextClaims = "claims"
	ContextEmail  = "email"
)

type TokenMiddleware struct {
	DB            *gorm.DB
	Store         *tokenstore.Store
	AccessSecret  []byte
	RefreshSecret []byte
}

func (m *TokenMiddleware) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(tokens.TypeAccess, m.AccessSecret, next)
}

func (m *TokenMiddleware) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(tokens.TypeRefresh, m.RefreshSecret, next)
}

func (m *TokenMiddleware) require(typ string, secret []byte, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_"+typ)

		raw, ok := bearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization Header")
		}

		claims, err := tokens.Parse(raw, typ, secret)
		if err != nil {
			if errors.Is(err, tokens.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		revoked, err := m.Store.IsRevoked(ctx, claims.ID)
		if err != nil {
			l.Error("revocation_lookup_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if revoked {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextEmail, claims.Subject)
		return next(c)
	}
}

// RequireAdmin runs after RequireAccess and re-reads the role from the users
// table, so a demotion takes effect without waiting for token expiry.
func (m *TokenMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		email, _ := c.Get(ContextEmail).(string)
		var user models.User
		if err := m.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		if user.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden,
				"User "+email+" does not have admin privileges")
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return "", false
	}
	return raw, true
}

// ClaimsFromContext returns the verified claims a Require* middleware stored.
func ClaimsFromContext(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(ContextClaims).(*tokens.Claims)
	return claims, ok
}
