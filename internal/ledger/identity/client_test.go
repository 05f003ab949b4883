package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
)

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/register", r.URL.Path)

		var payload credentialsPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "alice", payload.Username)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResult{
			UserID:       "usr-001",
			Username:     payload.Username,
			PasswordHash: "$2a$10$fakehash",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	result, err := client.Register(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "usr-001", result.UserID)
	assert.Equal(t, "alice", result.Username)
	assert.NotEmpty(t, result.PasswordHash)
}

func TestRegisterConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.Register(context.Background(), "alice", "hunter2hunter2")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestRegisterMissingUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResult{Username: "alice", PasswordHash: "$2a$10$fakehash"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.Register(context.Background(), "alice", "hunter2hunter2")
	assert.True(t, errors.Is(err, apperr.ErrInternal))
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(LoginResult{AccessToken: "token-abc", TokenType: "bearer"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	result, err := client.Login(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "token-abc", result.AccessToken)
	assert.Equal(t, "bearer", result.TokenType)
}

func TestLoginStatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectedErr error
	}{
		{"not found maps to not found", http.StatusNotFound, apperr.ErrNotFound},
		{"unauthorized maps to unauthorized", http.StatusUnauthorized, apperr.ErrUnauthorized},
		{"server error maps to internal", http.StatusInternalServerError, apperr.ErrInternal},
		{"unexpected status maps to internal", http.StatusTeapot, apperr.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL)
			_, err := client.Login(context.Background(), "alice", "wrong")
			assert.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
		})
	}
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.Login(context.Background(), "alice", "hunter2hunter2")
	assert.True(t, errors.Is(err, apperr.ErrInternal))
}
