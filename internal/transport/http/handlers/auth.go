package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-todo-service/internal/transport/http/httperr"
	"github.com/pribylovaa/go-todo-service/internal/transport/http/middleware"
)

// RegisterRequest — вход POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse — созданный аккаунт (без токенов: вход — отдельный шаг).
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginRequest — вход POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse — ответ /login и /token. Refresh-токен в тело не попадает:
// он уезжает только в HttpOnly-куку.
type TokenResponse struct {
	UserID          string `json:"user_id"`
	AccessToken     string `json:"access_token"`
	AccessExpiresAt int64  `json:"access_expires_at"` // Unix UTC
}

// RegisterUser — POST /register.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidInput)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), in.Username, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		ID:       user.ID.String(),
		Username: user.Username,
	})
}

// LoginUser — POST /login. Access-токен в теле, refresh-токен в куке.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidInput)
		return
	}

	pair, uid, err := h.Service.LoginUser(r.Context(), in.Username, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, TokenResponse{
		UserID:          uid.String(),
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt.Unix(),
	})
}

// RefreshToken — POST /token. Refresh-токен приходит в куке и ротируется:
// новая пара в ответе, кука переустанавливается.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if c, err := r.Cookie(h.Cookie.Name); err == nil {
		presented = c.Value
	}

	pair, uid, err := h.Service.RefreshTokens(r.Context(), presented)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, TokenResponse{
		UserID:          uid.String(),
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt.Unix(),
	})
}

// LogoutUser — POST /logout. Вход по Bearer access-токену; refresh-токен
// аккаунта отзывается, кука сбрасывается. Повторный logout идемпотентен.
func (h *Handlers) LogoutUser(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerFromContext(r.Context())

	if err := h.Service.LogoutUser(r.Context(), token); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// UsernameResponse — ответ GET /username.
type UsernameResponse struct {
	Username string `json:"username"`
}

// Username — GET /username: публичная идентичность владельца access-токена.
func (h *Handlers) Username(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerFromContext(r.Context())

	_, username, err := h.Service.UserByAccessToken(r.Context(), token)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UsernameResponse{Username: username})
}
