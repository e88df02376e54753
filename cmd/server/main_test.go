package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finance-tracker/internal/handlers"
	"finance-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create database")
	defer db.Close()

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>index</html>"), 0o644))

	h := handlers.NewHandlers(db, 24*time.Hour, false)
	router := setupRouter(h, staticDir, []string{"http://localhost:3000"})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "Index page served",
			method:     "GET",
			path:       "/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Register rejects empty body",
			method:     "POST",
			path:       "/api/users/register",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "View expenses requires auth",
			method:     "GET",
			path:       "/api/expenses/view",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Home page requires auth",
			method:     "GET",
			path:       "/home",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Connectivity check",
			method:     "GET",
			path:       "/api/test/connectivity",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code,
				"%s %s returned unexpected status", tt.method, tt.path)
		})
	}
}

func TestSetupRouter_CORS(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	h := handlers.NewHandlers(db, 24*time.Hour, false)
	router := setupRouter(h, t.TempDir(), []string{"https://app.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/users/login", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestBootstrapAdmin(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bootstrap.db")
	db, err := storage.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	t.Setenv("ADMIN_USER", "admin")
	t.Setenv("ADMIN_PASSWORD", "adminpass")
	t.Setenv("ADMIN_EMAIL", "admin@x.com")

	require.NoError(t, bootstrapAdmin(db))

	user, err := db.GetUserByUsername(t.Context(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@x.com", user.Email)

	// A second call on a populated database is a no-op.
	require.NoError(t, bootstrapAdmin(db))
	count, err := db.UserCount(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
