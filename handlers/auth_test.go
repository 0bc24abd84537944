package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo accepts a single hard-coded credential pair.
type fakeUserRepo struct{}

func (fakeUserRepo) Create(username, password, role string) error { return nil }

func (fakeUserRepo) GetRole(username, password string) (string, bool) {
	if username == "admin" && password == "s3cret" {
		return "admin", true
	}
	return "", false
}

func TestLoginSuccess(t *testing.T) {
	ah := NewAuthHandler(fakeUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`))
	rec := httptest.NewRecorder()
	ah.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "admin", resp["role"])
	require.NotEmpty(t, resp["token"])

	role, ok := ah.RoleForToken(resp["token"])
	assert.True(t, ok)
	assert.Equal(t, "admin", role)
}

func TestLoginWrongPassword(t *testing.T) {
	ah := NewAuthHandler(fakeUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
	rec := httptest.NewRecorder()
	ah.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUserSameResponseAsWrongPassword(t *testing.T) {
	ah := NewAuthHandler(fakeUserRepo{})

	wrongPass := httptest.NewRecorder()
	ah.Login(wrongPass, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"nope"}`)))

	unknownUser := httptest.NewRecorder()
	ah.Login(unknownUser, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"ghost","password":"nope"}`)))

	assert.Equal(t, wrongPass.Code, unknownUser.Code)
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestLoginBadBody(t *testing.T) {
	ah := NewAuthHandler(fakeUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	ah.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoleForUnknownToken(t *testing.T) {
	ah := NewAuthHandler(fakeUserRepo{})

	_, ok := ah.RoleForToken("never-issued")
	assert.False(t, ok)
}
