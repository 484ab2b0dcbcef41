package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"care-tasks.com/care-tasks/internal/constants"
	"care-tasks.com/care-tasks/internal/identity"
	model "care-tasks.com/care-tasks/internal/models"
)

const callerKey = "caller"

// Claims carried by access tokens. The subject is the account id.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// AccountEnsurer registers the account behind a verified token.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, caller identity.Caller) (*model.Account, error)
}

// Identity verifies the HS256 bearer token and stores the caller on the context.
func Identity(secret []byte, accounts AccountEnsurer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			role, ok := constants.ParseRole(claims.Role)
			if !ok || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}

			caller := identity.Caller{ID: claims.Subject, Role: role, Name: claims.Name}
			if _, err := accounts.EnsureAccount(c.Request().Context(), caller); err != nil {
				return err
			}

			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

func CallerFrom(c echo.Context) (identity.Caller, bool) {
	caller, ok := c.Get(callerKey).(identity.Caller)
	return caller, ok
}

// SignToken issues an HS256 token for caller.
func SignToken(secret []byte, caller identity.Caller, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = caller.ID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             string(caller.Role),
		Name:             caller.Name,
		RegisteredClaims: claims,
	})
	return token.SignedString(secret)
}
