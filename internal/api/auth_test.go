package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"chirp/internal/api"
	"chirp/internal/core"
)

func newAuthClient(t *testing.T, handler http.Handler) *api.AuthClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := &api.AuthClient{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &core.Config{BaseURL: server.URL},
	}
	require.NoError(t, client.Init(t.Context()))
	t.Cleanup(func() { client.Shutdown(context.Background()) }) //nolint:errcheck

	return client
}

func TestLogin_DecodesSession(t *testing.T) {
	t.Parallel()

	client := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ada", body["username"])
		require.Equal(t, "secret", body["password"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"token":   "token-1",
			"userId":  7,
			"isAdmin": true,
		})
	}))

	sess, err := client.Login(t.Context(), "ada", "secret")
	require.NoError(t, err)
	require.Equal(t, "token-1", sess.Token)
	require.EqualValues(t, 7, sess.UserID)
	require.True(t, sess.IsAdmin)

	// The login response carries no username, the submitted one is kept.
	require.Equal(t, "ada", sess.Username)
}

func TestLogin_RejectionIsInvalidCredentials(t *testing.T) {
	t.Parallel()

	client := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
	}))

	_, err := client.Login(t.Context(), "ada", "wrong")
	require.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestSignup(t *testing.T) {
	t.Parallel()

	client := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/signup", r.URL.Path)
		writeJSON(t, w, http.StatusCreated, map[string]string{"message": "ok"})
	}))

	require.NoError(t, client.Signup(t.Context(), "ada", "secret"))
}

func TestSignup_TakenUsernameIsConflict(t *testing.T) {
	t.Parallel()

	client := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, map[string]string{"error": "username already exists"})
	}))

	err := client.Signup(t.Context(), "ada", "secret")
	require.ErrorIs(t, err, core.ErrConflict)
}
