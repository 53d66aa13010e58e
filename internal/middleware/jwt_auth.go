package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/go-blog/backend/pkg/token"
	"github.com/labstack/echo/v4"
)

const userIDContextKey = "userID"

// RequireAuth checks for a valid bearer token and stores the caller's user
// ID in the request context. Missing, malformed, tampered and expired
// tokens all fail the request with 401.
func RequireAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid Authorization header")
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// OptionalAuth stores the caller's user ID when a valid bearer token is
// present but lets the request proceed anonymously otherwise. Used by
// endpoints that only annotate their response for authenticated callers.
func OptionalAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tokenString, ok := bearerToken(c); ok {
				if userID, err := tokens.Verify(tokenString); err == nil {
					c.Set(userIDContextKey, userID)
				}
			}
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get(userIDContextKey).(uint)
	return userID, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}
