package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/models"

	"io"
	"log/slog"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthMiddleware(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handlerCalled := false

	// Test handler which checks context values
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		assert.Equal(t, "uid-1", r.Context().Value(middlewarectx.UserUID))
		assert.Equal(t, models.RoleProfessional, r.Context().Value(middlewarectx.Role))
		assert.Equal(t, false, r.Context().Value(middlewarectx.IsAdmin))
		assert.Equal(t, "validtoken", r.Context().Value(middlewarectx.AccessToken))
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.AuthMiddleware(authMock, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "invalid signature",
			authHeader:     "Bearer garbage",
			mockErr:        errors.New("invalid or expired token"),
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "revoked token",
			authHeader:     "Bearer rotatedtoken",
			mockErr:        errors.New("token has been revoked"),
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockUser:       &models.User{UID: "uid-1", Role: models.RoleProfessional},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			authMock.ExpectedCalls = nil
			authMock.Calls = nil
			if tt.mockUser != nil || tt.mockErr != nil {
				authMock.On("ValidateToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockUser, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			authMock.AssertExpectations(t)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	handlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.AdminMiddleware(newNoopLogger())(nextHandler)

	tests := []struct {
		name           string
		ctxValue       any
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "context without identity",
			ctxValue:       nil,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "authenticated non-admin",
			ctxValue:       false,
			wantStatusCode: http.StatusForbidden,
			wantCalled:     false,
		},
		{
			name:           "admin",
			ctxValue:       true,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false

			req := httptest.NewRequest(http.MethodGet, "/admin/verification", nil)
			if tt.ctxValue != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.IsAdmin, tt.ctxValue))
			}

			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}
