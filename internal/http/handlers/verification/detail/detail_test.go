package detail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, userUID string) (*models.Verification, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newDetailRequest(userUID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/verification/"+userUID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uid", userUID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	return req.WithContext(ctx)
}

func TestDetailHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	rec := &models.Verification{
		UserUID: "uid-1",
		Status:  models.VerificationPending,
		Documents: []models.VerificationDocument{
			{Type: models.DocIdentity, Verified: true},
		},
	}

	tests := []struct {
		name           string
		userUID        string
		mockRecord     *models.Verification
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "record of another user",
			userUID:        "uid-1",
			mockRecord:     rec,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "unknown user",
			userUID:        "uid-ghost",
			mockErr:        errs.ErrUserNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
			wantStatus:     "Error",
		},
		{
			name:           "service failure",
			userUID:        "uid-1",
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			serviceMock.On("Get", mock.Anything, tt.userUID).
				Return(tt.mockRecord, tt.mockErr).Once()

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newDetailRequest(tt.userUID))

			assert.Equal(t, tt.wantStatusCode, w.Code)

			var got map[string]any
			err := json.NewDecoder(w.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "uid-1", data["user_uid"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
