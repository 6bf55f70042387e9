// Package testutil holds shared fixtures for handler and repository tests:
// an in-memory database with the real schema, and helpers for driving the
// router over httptest.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookhub/pkg/database"
	"bookhub/pkg/utils"
)

// NewDB opens an in-memory sqlite database with the schema applied.
// sqlite ":memory:" is per-connection, so the pool is pinned to one.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	return db
}

func AuthConfig() utils.AuthConfig {
	return utils.AuthConfig{
		JWTSecret:   "test-secret",
		JWTIssuer:   "bookhub",
		JWTDuration: 168 * time.Hour,
	}
}

// Request performs an HTTP call against the router and returns the recorder.
// payload, when non-nil, is sent as a JSON body.
func Request(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a recorded JSON response body into out.
func Decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// Signup registers a user through the API and returns the bearer token.
func Signup(t *testing.T, router http.Handler, name, email, password string) string {
	t.Helper()

	w := Request(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	Decode(t, w, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}
