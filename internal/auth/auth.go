// Package auth validates JWT bearer tokens on the API surface. Token
// issuance lives elsewhere; this package only checks signatures and pulls
// the caller's identity into the request context.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key holding the authenticated user id.
const userIDKey = "user_id"

// JWT validates HMAC-signed bearer tokens.
type JWT struct {
	secret []byte
}

// New creates a JWT validator for the given shared secret.
func New(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject in the context for handlers.
func (j *JWT) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			subject, err := j.validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(userIDKey, subject)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id stored by the middleware, or
// the empty string when the request was not authenticated.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func extractToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header is not a bearer token")
	}
	return parts[1], nil
}

func (j *JWT) validate(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}
	return token.Claims.GetSubject()
}
