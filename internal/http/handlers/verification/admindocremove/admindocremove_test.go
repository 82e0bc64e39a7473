package admindocremove

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

func (m *ServiceMock) RemoveDocument(ctx context.Context, userUID, docType string) error {
	args := m.Called(ctx, userUID, docType)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRemoveRequest(userUID, docType string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete,
		"/admin/verification/"+userUID+"/documents/"+docType, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uid", userUID)
	rctx.URLParams.Add("type", docType)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	return req.WithContext(ctx)
}

func TestAdminDocRemoveHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	tests := []struct {
		name           string
		userUID        string
		docType        string
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "admin removes another user's document",
			userUID:        "uid-1",
			docType:        models.DocIdentity,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "unknown document type",
			userUID:        "uid-1",
			docType:        "passport",
			mockErr:        errs.ErrUnknownDocumentType,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "unknown document type",
			wantStatus:     "Error",
		},
		{
			name:           "document never uploaded",
			userUID:        "uid-1",
			docType:        models.DocCriminalRecord,
			mockErr:        errs.ErrDocumentNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "document not uploaded",
			wantStatus:     "Error",
		},
		{
			name:           "service failure",
			userUID:        "uid-1",
			docType:        models.DocIdentity,
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

			serviceMock.On("RemoveDocument", mock.Anything, tt.userUID, tt.docType).
				Return(tt.mockErr).Once()

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRemoveRequest(tt.userUID, tt.docType))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
