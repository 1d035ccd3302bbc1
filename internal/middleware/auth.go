package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/resumeingestor/ingestor/internal/config"
	apperrors "github.com/resumeingestor/ingestor/internal/errors"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
)

// RoleAdmin grants access to the cache administration routes.
const RoleAdmin = "admin"

// AuthMiddleware validates HS256 bearer tokens signed with cfg.JWTSecret.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Missing Authorization header", "AUTH_MISSING_HEADER")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "Invalid Authorization header format", "AUTH_INVALID_HEADER")
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "Invalid token", "AUTH_INVALID_TOKEN")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "Invalid claims", "AUTH_INVALID_CLAIMS")
				return
			}

			if cfg.JWTIssuer != "" {
				iss, _ := claims["iss"].(string)
				if iss != cfg.JWTIssuer {
					unauthorized(w, "Invalid issuer", "AUTH_INVALID_ISSUER")
					return
				}
			}

			userID, ok := claims["sub"].(string)
			if !ok || userID == "" {
				unauthorized(w, "Missing sub claim", "AUTH_MISSING_SUBJECT")
				return
			}
			role, _ := claims["role"].(string)

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetRole extracts the role claim from request context. Tokens without a
// role claim yield an empty string.
func GetRole(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// RequireAuth is a helper that returns 401 if no user ID in context
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			unauthorized(w, "Unauthorized", "AUTH_REQUIRED")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated requests whose role claim is not role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUserID(r.Context()); !ok {
				unauthorized(w, "Unauthorized", "AUTH_REQUIRED")
				return
			}
			if GetRole(r.Context()) != role {
				apperrors.WriteJSON(w, apperrors.NewForbiddenError("Insufficient role", "AUTH_FORBIDDEN"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message, code string) {
	apperrors.WriteJSON(w, apperrors.NewUnauthorizedError(message, code))
}
