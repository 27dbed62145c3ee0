package login

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (models.SubscriptionStatus, string, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.SubscriptionStatus), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantBody       map[string]any
	}{
		{
			name: "successful login",
			body: `{"email":"a@x.com","password":"pw1"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "a@x.com", "pw1").Return(models.StatusNone, "jwt-token", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody:       map[string]any{"login": true, "subscription": "none", "token": "jwt-token"},
		},
		{
			name: "active subscription",
			body: `{"email":"a@x.com","password":"pw1"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "a@x.com", "pw1").Return(models.StatusActive, "jwt-token", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody:       map[string]any{"login": true, "subscription": "active", "token": "jwt-token"},
		},
		{
			name: "wrong password",
			body: `{"email":"a@x.com","password":"nope"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "a@x.com", "nope").
					Return(models.SubscriptionStatus(""), "", fmt.Errorf("account.Login: %w", apperr.ErrInvalidCredentials)).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       map[string]any{"login": false},
		},
		{
			name: "storage unavailable",
			body: `{"email":"a@x.com","password":"pw1"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "a@x.com", "pw1").
					Return(models.SubscriptionStatus(""), "", fmt.Errorf("storage.FindByEmail: %w", apperr.ErrStorage)).Once()
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantBody:       map[string]any{"error": "storage error"},
		},
		{
			name:           "invalid json",
			body:           `{`,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       map[string]any{"error": "invalid request body"},
		},
		{
			name:           "missing email",
			body:           `{"password":"pw1"}`,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       map[string]any{"error": "field Email is a required field"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantBody, got)
			svc.AssertExpectations(t)
		})
	}
}
