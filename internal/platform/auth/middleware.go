package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Claims is the token payload supplied by the upstream identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Role          string   `json:"role"`
	DepartmentIDs []string `json:"department_ids"`
}

type JWTConfig struct {
	Secret []byte
	Issuer string
}

// JWTMiddleware validates the bearer token and places the resolved Caller on
// the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"HS256"}),
			}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}

			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.Secret, nil
			}, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			caller, err := callerFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}

			c.SetRequest(c.Request().WithContext(WithCaller(c.Request().Context(), caller)))
			return next(c)
		}
	}
}

func callerFromClaims(claims *Claims) (Caller, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Caller{}, err
	}
	caller := Caller{UserID: userID, Role: claims.Role}
	for _, raw := range claims.DepartmentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Caller{}, err
		}
		caller.DepartmentIDs = append(caller.DepartmentIDs, id)
	}
	return caller, nil
}

// DevAuthMiddleware is a permissive middleware for development that injects
// an admin caller when no Authorization header is supplied.
func DevAuthMiddleware() echo.MiddlewareFunc {
	devUserID := uuid.New()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := Caller{UserID: devUserID, Role: RoleAdmin}
			c.SetRequest(c.Request().WithContext(WithCaller(c.Request().Context(), caller)))
			return next(c)
		}
	}
}
