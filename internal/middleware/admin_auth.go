package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

const adminSessionKey = "admin_session"

// Authenticator resolves a bearer token to an admin session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AdminSession, error)
}

// AdminAuth rejects requests without a live admin session.
func AdminAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			sess, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
				}
				return err
			}
			c.Set(adminSessionKey, sess)
			return next(c)
		}
	}
}

// AdminSession returns the session AdminAuth stored on c.
func AdminSession(c echo.Context) *models.AdminSession {
	sess, _ := c.Get(adminSessionKey).(*models.AdminSession)
	return sess
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
