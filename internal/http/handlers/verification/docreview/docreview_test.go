package docreview

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	"github.com/edilconnect/platform/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ReviewDocument(ctx context.Context, userUID, docType string,
	verified bool, note, adminUID string) (*models.Verification, error) {
	args := m.Called(ctx, userUID, docType, verified, note, adminUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newReviewRequest(userUID, docType string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPut,
		"/admin/verification/"+userUID+"/documents/"+docType, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uid", userUID)
	rctx.URLParams.Add("type", docType)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	ctx = context.WithValue(ctx, middlewarectx.UserUID, "admin-1")
	return req.WithContext(ctx)
}

func TestDocReviewHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	verified := true
	rec := &models.Verification{UserUID: "uid-1", Status: models.VerificationPending}

	tests := []struct {
		name           string
		docType        string
		requestBody    any
		expectCall     bool
		wantVerified   bool
		wantNote       string
		mockRecord     *models.Verification
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "verdict with a note",
			docType:        models.DocIdentity,
			requestBody:    Request{Verified: &verified, Note: "timbro mancante"},
			expectCall:     true,
			wantVerified:   true,
			wantNote:       "timbro mancante",
			mockRecord:     rec,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "verdict without a note",
			docType:        models.DocIdentity,
			requestBody:    Request{Verified: &verified},
			expectCall:     true,
			wantVerified:   true,
			mockRecord:     rec,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "missing verdict",
			docType:        models.DocIdentity,
			requestBody:    Request{Note: "solo nota"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Verified is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "unknown document type",
			docType:        "passport",
			requestBody:    Request{Verified: &verified},
			expectCall:     true,
			wantVerified:   true,
			mockErr:        errs.ErrUnknownDocumentType,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "unknown document type",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.expectCall {
				serviceMock.On("ReviewDocument", mock.Anything, "uid-1", tt.docType,
					tt.wantVerified, tt.wantNote, "admin-1").
					Return(tt.mockRecord, tt.mockErr).Once()
			}

			body, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newReviewRequest("uid-1", tt.docType, body))

			assert.Equal(t, tt.wantStatusCode, w.Code)

			var got map[string]any
			err = json.NewDecoder(w.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
