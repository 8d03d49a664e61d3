package client

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	return store
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := newTestSessionStore(t)

	// Logged out initially.
	session, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if session != nil {
		t.Fatalf("expected nil session before login, got %+v", session)
	}

	saved := &Session{
		Token: "token-abc",
		User:  SessionUser{ID: "u1", Username: "alice", Email: "alice@example.com", Role: "user"},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil || loaded.Token != "token-abc" || loaded.User.Username != "alice" {
		t.Errorf("unexpected session: %+v", loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	loaded, err = store.Load()
	if err != nil {
		t.Fatalf("Load after clear failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil session after clear, got %+v", loaded)
	}

	// Clearing twice is harmless.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}

func TestSessionStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	session, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if session != nil {
		t.Errorf("corrupt file should read as logged out, got %+v", session)
	}
}

func TestSessionStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}

	if err := store.Save(&Session{Token: "t"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("expected mode 0600, got %o", mode)
	}
}
