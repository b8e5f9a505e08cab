package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xjzfwqgf/chat-web/internal/user"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type userResponse struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// Register handles POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Warnf("[POST /api/register] ❌ Bad Request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.Users.Register(r.Context(), req.Username, req.Password, req.Nickname, req.Avatar)
	switch {
	case errors.Is(err, user.ErrUserExists), errors.Is(err, user.ErrInvalidInput):
		h.Log.Warnf("[POST /api/register] ❌ %s: %v", req.Username, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.Log.Errorf("[POST /api/register] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	h.Log.Infof("[POST /api/register] ✅ Registered %s", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "registered"})
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Log.Warnf("[POST /api/login] ❌ Bad Request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.Users.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		h.Log.Warnf("[POST /api/login] ❌ Invalid credentials for %s", req.Username)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.Log.Errorf("[POST /api/login] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.Log.Infof("[POST /api/login] ✅ %s logged in", u.Username)
	writeJSON(w, http.StatusOK, loginResponse{Message: "logged in", Nickname: u.Nickname, Avatar: u.Avatar})
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		h.Log.Errorf("[GET /api/users] ❌ Database error: %v", err)
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{Username: u.Username, Nickname: u.Nickname, Avatar: u.Avatar})
	}
	writeJSON(w, http.StatusOK, out)
}
