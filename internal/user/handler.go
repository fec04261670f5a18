package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mberrie/todoapp-service/internal/auth"
	"github.com/mberrie/todoapp-service/internal/user/entity"
)

// Handler exposes HTTP endpoints for account lifecycle: registration, login,
// logout and self-service profile operations.
type Handler struct {
	svc     *Service
	tokens  *auth.TokenService
	authCfg auth.Config
	logger  *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *auth.TokenService, authCfg auth.Config, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, authCfg: authCfg, logger: logger}
}

// RegisterRequest is the body of POST /auth.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

// RegisterResponse carries the new account id.
type RegisterResponse struct {
	ID int64 `json:"id"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "password confirmation does not match"})
		return
	}

	u := &entity.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}
	if req.PhoneNumber != "" {
		u.PhoneNumber = &req.PhoneNumber
	}

	id, err := h.svc.Register(r.Context(), u, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "username or email already taken"})
		case errors.Is(err, ErrInvalid):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username, email and password are required"})
		default:
			h.logger.Warnw("register failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, RegisterResponse{ID: id})
}

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login accepts a form-encoded username/password pair, OAuth2 password-grant
// style. Every failure cause collapses to the same 401; the reason is only
// logged.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	u, err := h.svc.Authenticate(r.Context(), username, password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	apiToken, err := h.tokens.Issue(u.Username, u.ID, u.Role, h.authCfg.APITokenTTL)
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	webToken, err := h.tokens.Issue(u.Username, u.ID, u.Role, h.authCfg.WebTokenTTL)
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    webToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.authCfg.WebTokenTTL / time.Second),
	})
	h.writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: apiToken,
		TokenType:   "bearer",
		ExpiresIn:   int(h.authCfg.APITokenTTL / time.Second),
	})
}

// Logout clears the session cookie. The server keeps no session state, so
// tokens already handed out stay valid until natural expiry.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated caller's account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
		return
	}
	u, err := h.svc.Profile(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		h.logger.Errorw("profile lookup failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// ChangePasswordRequest is the body of PUT /users/password.
type ChangePasswordRequest struct {
	Password        string `json:"password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
		return
	}
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.NewPassword {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password confirmation does not match"})
		return
	}
	if err := h.svc.ChangePassword(r.Context(), identity.UserID, req.Password, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrBadCredentials):
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		case errors.Is(err, ErrInvalid):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "new password is required"})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		default:
			h.logger.Errorw("password change failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "password change failed"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangePhoneNumber(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
		return
	}
	phone := r.PathValue("phone")
	if err := h.svc.ChangePhoneNumber(r.Context(), identity.UserID, phone); err != nil {
		switch {
		case errors.Is(err, ErrInvalid):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone number is required"})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		default:
			h.logger.Errorw("phone number change failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "phone number change failed"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
