package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"reachmesh-bknd/internal/auth"
	"reachmesh-bknd/internal/config"
	"reachmesh-bknd/internal/logger"
	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"

	"go.uber.org/zap"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authSvc *services.AuthService
	logr    *logger.Logger
	cfg     *config.Config
}

func NewAuthHandler(svc *services.AuthService, logr *logger.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authSvc: svc, logr: logr, cfg: cfg}
}

type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

type ldapReq struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

type tokenResp struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresAt    time.Time        `json:"access_expires_at"`
	User         *models.UserInfo `json:"user,omitempty"`
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, pair *auth.TokenPair, user *models.UserInfo) {
	h.setRefreshCookie(w, pair.RefreshToken, pair.RefreshExp)
	writeJSON(w, status, tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExp,
		User:         user,
	})
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr.Logger, err, "Invalid request body")
		return
	}
	pair, user, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logr.Logger, err, "Failed to register")
		return
	}
	h.respondWithTokens(w, http.StatusCreated, pair, user)
}

// POST /auth/login
func (h *AuthHandler) LoginLocal(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr.Logger, err, "Invalid request body")
		return
	}
	pair, user, err := h.authSvc.LoginLocal(r.Context(), req.Email, req.Password, req.DeviceInfo)
	if err != nil {
		h.logr.Warn("local login failed", zap.Error(err), zap.String("email", req.Email))
		writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: "invalid credentials"})
		return
	}
	h.respondWithTokens(w, http.StatusOK, pair, user)
}

// POST /auth/ldap
func (h *AuthHandler) LoginLDAP(w http.ResponseWriter, r *http.Request) {
	var req ldapReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logr.Logger, err, "Invalid request body")
		return
	}
	pair, user, err := h.authSvc.LoginLDAP(r.Context(), req.Username, req.Password, req.DeviceInfo)
	if err != nil {
		h.logr.Warn("ldap login failed", zap.Error(err), zap.String("username", req.Username))
		writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: "invalid credentials"})
		return
	}
	h.respondWithTokens(w, http.StatusOK, pair, user)
}

// POST /auth/refresh  (reads refresh token from cookie OR body)
type refreshReq struct {
	RefreshToken string `json:"refresh_token,omitempty"`
	DeviceInfo   string `json:"device_info,omitempty"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	// prefer cookie if present
	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "refresh token required"})
		return
	}

	pair, err := h.authSvc.Refresh(r.Context(), req.RefreshToken, req.DeviceInfo)
	if err != nil {
		h.logr.Warn("refresh failed", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: "invalid refresh token"})
		return
	}
	h.respondWithTokens(w, http.StatusOK, pair, nil)
}

// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "refresh token required"})
		return
	}

	if err := h.authSvc.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, h.logr.Logger, err, "Failed to logout")
		return
	}

	h.setRefreshCookie(w, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cfg.Environment == "production",
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}
