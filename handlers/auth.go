package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pulsechat/middleware"
	"pulsechat/models"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if len(req.Username) < 3 || len(req.Username) > 20 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username must be 3-20 characters"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid email address"})
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Password must be at least 6 characters"})
		return
	}

	if _, err := h.db.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Email already registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, req.Email, string(hashed), models.RoleUser)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.issueToken(w, r, user)
	h.log.Info(r.Context(), "user registered", "user_id", user.ID, "username", user.Username)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    user.ToResponse(),
	})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		return
	}
	if user.IsDisabled {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Account disabled"})
		return
	}

	if err := h.db.UpdateLastSeen(r.Context(), user.ID, time.Now().UTC()); err != nil {
		h.log.Warn(r.Context(), "last-seen update failed", "user_id", user.ID, "error", err)
	}

	h.issueToken(w, r, user)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user.ToResponse(),
	})
}

// Logout clears the token cookie. Tokens themselves stay valid until expiry.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the current authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, user.ToResponse())
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, err := h.tokens.Generate(user.ID, user.Role)
	if err != nil {
		h.log.Error(r.Context(), "token generation failed", "user_id", user.ID, "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokens.Validity()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
