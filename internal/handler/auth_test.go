package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/strucbot/strucbot/internal/handler/dto"
	"github.com/strucbot/strucbot/internal/store"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doRequest(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret-pw",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.RegisterResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "User created successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]any{
		{"email": "a@example.com", "password": "pw"},
		{"username": "a", "password": "pw"},
		{"username": "a", "email": "a@example.com"},
		{},
	}
	for _, body := range cases {
		rec := env.doRequest(t, http.MethodPost, "/api/auth/register", "", body)
		assertError(t, rec, http.StatusBadRequest, "All fields are required")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "taken", "pw-one-two")

	rec := env.doRequest(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "taken",
		"email":    "other@example.com",
		"password": "pw-three",
	})
	assertError(t, rec, http.StatusBadRequest, "Username or email already exists")
}

func TestRegister_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doRequest(t, http.MethodPost, "/api/auth/register", "", "not an object")
	assertError(t, rec, http.StatusBadRequest, "invalid request body")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "bob", "bob-password")

	// Login by email works too.
	rec := env.doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "bob@example.com",
		"password": "bob-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.LoginResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "Login successful" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Token == "" {
		t.Error("expected a session token")
	}
	if resp.User.Username != "bob" || resp.User.Email != "bob@example.com" {
		t.Errorf("unexpected user payload: %+v", resp.User)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "carol", "carol-password")

	cases := []map[string]any{
		{"username": "carol", "password": "wrong"},
		{"username": "nobody", "password": "carol-password"},
		{"username": "carol"},
	}
	for _, body := range cases {
		rec := env.doRequest(t, http.MethodPost, "/api/auth/login", "", body)
		assertError(t, rec, http.StatusUnauthorized, "Invalid credentials")
	}
}

func TestLogin_SeededAdmin(t *testing.T) {
	env := newTestEnv(t)
	if err := store.SeedAdmin(context.Background(), env.store); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	rec := env.doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": store.SeedAdminUsername,
		"password": store.SeedAdminPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.LoginResponse
	decodeBody(t, rec, &resp)
	if resp.User.Role != "admin" {
		t.Errorf("expected admin role, got %q", resp.User.Role)
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "dave", "dave-password")

	rec := env.doRequest(t, http.MethodGet, "/api/auth/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.UserResponse
	decodeBody(t, rec, &resp)
	if resp.Username != "dave" || resp.Email != "dave@example.com" || resp.Role != "user" {
		t.Errorf("unexpected profile: %+v", resp)
	}
}

func TestProfile_NoToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doRequest(t, http.MethodGet, "/api/auth/profile", "", nil)
	assertError(t, rec, http.StatusUnauthorized, "Access token required")
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "erin", "erin-password")

	// Only the username changes; the email is kept.
	rec := env.doRequest(t, http.MethodPut, "/api/auth/profile", token, map[string]any{
		"username": "erin2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ProfileUpdateResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "Profile updated successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.User.Username != "erin2" {
		t.Errorf("username not updated: %+v", resp.User)
	}
	if resp.User.Email != "erin@example.com" {
		t.Errorf("email should be unchanged: %+v", resp.User)
	}
}

func TestUpdateProfile_TakenUsername(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "frank", "frank-password")
	token := env.registerAndLogin(t, "grace", "grace-password")

	rec := env.doRequest(t, http.MethodPut, "/api/auth/profile", token, map[string]any{
		"username": "frank",
	})
	assertError(t, rec, http.StatusBadRequest, "Username or email already exists")
}
