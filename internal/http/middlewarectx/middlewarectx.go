// Package middlewarectx contains the HTTP middleware of the API: token
// authentication, the admin gate and rate limiting. The authentication
// middleware resolves the bearer token to a user and stores the identity
// under typed context keys for the handlers downstream.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
)

// Key is the type for request-context keys.
type Key string

const (
	// UserUID is the context key for the authenticated user's uid.
	UserUID Key = "user_uid"
	// Role is the context key for the user's role.
	Role Key = "role"
	// IsAdmin is the context key for the admin flag.
	IsAdmin Key = "is_admin"
	// AccessToken is the context key for the raw bearer token, needed by
	// logout to revoke the presented session.
	AccessToken Key = "access_token"
)

// Service validates an access token and resolves its user.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware returns middleware that checks the bearer token in the
// Authorization header. The token must be validly signed, unexpired and
// still a member of the user's stored session set; anything else is 401.
func AuthMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, user.UID)
			ctx = context.WithValue(ctx, Role, user.Role)
			ctx = context.WithValue(ctx, IsAdmin, user.IsAdmin)
			ctx = context.WithValue(ctx, AccessToken, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware returns middleware that allows only admins through. It
// must run after AuthMiddleware; the is_admin flag alone carries the
// privilege.
func AdminMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			isAdmin, ok := r.Context().Value(IsAdmin).(bool)
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}
			if !isAdmin {
				log.Error("admin access denied")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
