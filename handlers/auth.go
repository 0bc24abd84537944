package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/visionattend/attendancebackend/repository"
)

// AuthHandler verifies credentials against the user store and hands out
// opaque session tokens. Sessions live in memory; a restart logs everyone
// out.
type AuthHandler struct {
	Users repository.UserRepositoryInterface

	mu       sync.Mutex
	sessions map[string]string // token -> role
}

func NewAuthHandler(users repository.UserRepositoryInterface) *AuthHandler {
	return &AuthHandler{
		Users:    users,
		sessions: make(map[string]string),
	}
}

// Login handles POST /api/login with {"username": ..., "password": ...}.
// Unknown users and wrong passwords get the same response.
func (ah *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	role, ok := ah.Users.GetRole(req.Username, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token := uuid.NewString()
	ah.mu.Lock()
	ah.sessions[token] = role
	ah.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"token": token, "role": role})
}

// RoleForToken reports the role a session token was issued for.
func (ah *AuthHandler) RoleForToken(token string) (string, bool) {
	ah.mu.Lock()
	defer ah.mu.Unlock()
	role, ok := ah.sessions[token]
	return role, ok
}
