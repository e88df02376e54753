package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/apperror"
	"finance-tracker/internal/auth"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. Username and email must be unique; the
// password is stored only as a bcrypt hash.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperror.Validationf("invalid request body"))
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, apperror.Validationf("invalid request body"))
			return
		}
		req.Username = r.FormValue("username")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, apperror.Validationf("all fields are required"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		// The log line carries no password material.
		log.Printf("Register: password hashing failed")
		writeError(w, apperror.New(apperror.Internal, "internal server error", nil))
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginFailedMessage is identical for unknown usernames and wrong passwords
// so callers get no distinguishing signal.
const loginFailedMessage = "Invalid Username or Password!"

// Login verifies credentials and issues a session cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "Invalid request body",
			})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "Invalid request body",
			})
			return
		}
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "Username and password are required",
		})
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if apperror.Is(err, apperror.Unavailable) {
			log.Printf("Login: user lookup failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false, "message": "Internal Server Error",
			})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false, "message": loginFailedMessage,
		})
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false, "message": loginFailedMessage,
		})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false, "message": "Internal Server Error",
		})
		return
	}

	// Lazy purge keeps the sessions table from accumulating dead rows.
	if err := h.db.CleanExpiredSessions(r.Context()); err != nil {
		log.Printf("Failed to clean expired sessions: %v", err)
	}

	if err := h.db.CreateSession(r.Context(), token, user.ID, time.Now().Add(h.sessionTTL)); err != nil {
		log.Printf("Failed to create session: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false, "message": "Internal Server Error",
		})
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Logout revokes the current session. It is idempotent: an absent or
// already-invalid session still clears the cookie and succeeds.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type updateProfileRequest struct {
	Email string `json:"email"`
}

// UpdateProfile changes the authenticated user's email. The target account
// is always the session user; there is no update-by-id.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if user == nil {
		h.writeUnauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validationf("invalid request body"))
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, apperror.Validationf("email is required"))
		return
	}

	updated, err := h.db.UpdateUserEmail(r.Context(), user.ID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteAccount removes the authenticated user's account. Sessions and
// expenses cascade; the cookie is cleared.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if user == nil {
		h.writeUnauthorized(w)
		return
	}

	if err := h.db.DeleteUser(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
