package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"
)

type AuthMock struct {
	mock.Mock
}

func (m *AuthMock) Register(ctx context.Context, email, displayName, password string) (string, error) {
	args := m.Called(ctx, email, displayName, password)
	return args.String(0), args.Error(1)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := Request{Email: "anna@example.com", DisplayName: "Anna", Password: "secret123"}

	tests := []struct {
		name           string
		request        any
		uid            string
		err            error
		wantStatusCode int
		wantError      string
	}{
		{name: "created", request: valid, uid: "u-1", wantStatusCode: http.StatusCreated},
		{
			name:           "duplicate email",
			request:        valid,
			err:            fmt.Errorf("auth.Register: %w", repository.ErrUserExists),
			wantStatusCode: http.StatusConflict,
			wantError:      "user already exists",
		},
		{
			name:           "storage failure",
			request:        valid,
			err:            errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to register user",
		},
		{
			name:           "bad email",
			request:        Request{Email: "anna", DisplayName: "Anna", Password: "secret123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
		},
		{
			name:           "short password",
			request:        Request{Email: "anna@example.com", DisplayName: "Anna", Password: "123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password must be at least 6 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthMock)
			authMock.On("Register", mock.Anything, "anna@example.com", "Anna", "secret123").Return(tt.uid, tt.err).Maybe()
			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), authMock)

			raw, err := json.Marshal(tt.request)
			require.NoError(t, err)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(raw)))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got.Error)
				return
			}
			assert.Equal(t, response.StatusOK, got.Status)
			assert.Equal(t, "u-1", got.Data.(map[string]any)["user_id"])
		})
	}
}
