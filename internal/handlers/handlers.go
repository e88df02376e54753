// Package handlers implements the JSON API and the auth gate in front of
// every protected operation.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/apperror"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions.
type contextKey string

// UserContextKey is the context key for the authenticated user.
const UserContextKey contextKey = "user"

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	sessionTTL   time.Duration
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, sessionTTL time.Duration, secureCookie bool) *Handlers {
	return &Handlers{db: db, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// Routes builds the API router. Protected routes sit behind RequireAuth;
// nothing inside that group ever reads a client-supplied user id.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", h.Register)
		r.Post("/users/login", h.Login)
		r.Post("/users/logout", h.Logout)
		r.Get("/test/connectivity", h.Connectivity)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Put("/users/me", h.UpdateProfile)
			r.Delete("/users/me", h.DeleteAccount)
			r.Post("/expenses/add", h.AddExpense)
			r.Get("/expenses/view", h.ViewExpenses)
			r.Get("/expenses/summary", h.ExpenseSummary)
		})
	})

	return r
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

func contextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// RequireAuth is the single chokepoint that establishes the current user.
// It resolves the session cookie and rejects the request with a uniform 401
// before the wrapped handler runs. Absent, unknown and expired sessions are
// indistinguishable to the caller. Sessions past the halfway point of their
// lifetime are renewed so active users stay logged in.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			h.writeUnauthorized(w)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(r.Context(), cookie.Value)
		if err != nil {
			// A store failure is a 500, not a misleading 401. Everything
			// else is the uniform rejection.
			if !apperror.Is(err, apperror.Auth) {
				writeError(w, err)
				return
			}
			h.clearSessionCookie(w)
			h.writeUnauthorized(w)
			return
		}

		if time.Until(sessionInfo.ExpiresAt) < h.sessionTTL/2 {
			newExpiresAt := time.Now().Add(h.sessionTTL)
			if err := h.db.RenewSession(r.Context(), cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value)
			}
			// If renewal fails, just continue with the current session
		}

		ctx := contextWithUser(r.Context(), sessionInfo.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Connectivity reports whether the backing store is reachable.
func (h *Handlers) Connectivity(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		log.Printf("Connectivity check failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Database connection failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Database connection successful",
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError translates an application error into its HTTP shape. Internal
// causes are logged, never sent to the client.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperror.From(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("Internal error: %v", appErr)
	}
	writeJSON(w, appErr.StatusCode(), map[string]string{"error": appErr.Message})
}

// isJSONRequest reports whether the request body should be decoded as JSON.
// The frontend posts urlencoded forms; API clients post JSON.
func isJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
