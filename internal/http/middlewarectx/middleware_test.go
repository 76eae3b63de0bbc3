package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"
)

type AuthMock struct {
	mock.Mock
}

func (m *AuthMock) Authenticate(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

type AccountsMock struct {
	mock.Mock
}

func (m *AccountsMock) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	args := m.Called(ctx, userID)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testClaims(userID string) *jwt.CustomClaims {
	return &jwt.CustomClaims{RegisteredClaims: gojwt.RegisteredClaims{Subject: userID, ID: "jti-1"}}
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		claims         *jwt.CustomClaims
		authErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "revoked token",
			authHeader:     "Bearer token",
			authErr:        errors.New("token revoked"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			claims:         testClaims("u-1"),
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthMock)
			if tt.claims != nil || tt.authErr != nil {
				authMock.On("Authenticate", mock.Anything, mock.Anything).Return(tt.claims, tt.authErr)
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				claims, ok := middlewarectx.ClaimsFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "u-1", claims.Subject)
				w.WriteHeader(http.StatusOK)
			})
			handler := middlewarectx.JWTMiddleware(authMock, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		claims         *jwt.CustomClaims
		account        *models.Account
		err            error
		wantStatusCode int
	}{
		{name: "no claims", wantStatusCode: http.StatusUnauthorized},
		{
			name:           "admin",
			claims:         testClaims("a-1"),
			account:        &models.Account{ID: "a-1", Role: models.RoleAdmin, Status: models.StatusActive},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "regular user",
			claims:         testClaims("u-1"),
			account:        &models.Account{ID: "u-1", Role: models.RoleUser, Status: models.StatusActive},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "blocked admin",
			claims:         testClaims("a-1"),
			account:        &models.Account{ID: "a-1", Role: models.RoleAdmin, Status: models.StatusBlocked},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "no account record",
			claims:         testClaims("u-1"),
			err:            repository.ErrAccountNotFound,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "storage failure",
			claims:         testClaims("u-1"),
			err:            errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(AccountsMock)
			if tt.claims != nil {
				accounts.On("GetAccount", mock.Anything, tt.claims.Subject).Return(tt.account, tt.err)
			}
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := middlewarectx.AdminMiddleware(accounts, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodPatch, "/", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Claims, tt.claims))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 2)(next)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
