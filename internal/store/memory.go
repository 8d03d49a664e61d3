package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/strucbot/strucbot/internal/model"
)

// Memory is the default process-local store. All access goes through a
// single mutex: the original demo relied on its runtime never
// interleaving handler mutations, here that atomicity is an explicit
// contract.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]*model.User     // by id
	byName  map[string]string          // lowercased username -> id
	byEmail map[string]string          // lowercased email -> id
	schemas map[string][]*model.Schema // by user id, insertion order
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]*model.User),
		byName:  make(map[string]string),
		byEmail: make(map[string]string),
		schemas: make(map[string][]*model.Schema),
	}
}

// NewUserID generates a unique id for a new user.
func NewUserID() string {
	return ulid.Make().String()
}

// CreateUser inserts a new user and an empty schema collection.
func (m *Memory) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := strings.ToLower(user.Username)
	email := strings.ToLower(user.Email)

	if _, taken := m.byName[name]; taken {
		return ErrUserExists
	}
	if _, taken := m.byEmail[email]; taken {
		return ErrUserExists
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	m.users[user.ID] = &stored
	m.byName[name] = user.ID
	m.byEmail[email] = user.ID
	m.schemas[user.ID] = []*model.Schema{}

	return nil
}

// GetUserByID returns a copy of the user with the given id.
func (m *Memory) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

// GetUserByLogin looks a user up by username or email.
func (m *Memory) GetUserByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := strings.ToLower(usernameOrEmail)
	id, ok := m.byName[key]
	if !ok {
		id, ok = m.byEmail[key]
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *m.users[id]
	return &copied, nil
}

// UpdateUser overwrites username and/or email; empty fields are kept.
func (m *Memory) UpdateUser(ctx context.Context, id, username, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	// Validate both values before mutating anything so a conflict on one
	// field never leaves a half-applied update behind.
	nameKey := strings.ToLower(username)
	emailKey := strings.ToLower(email)
	if username != "" {
		if other, taken := m.byName[nameKey]; taken && other != id {
			return nil, ErrUserExists
		}
	}
	if email != "" {
		if other, taken := m.byEmail[emailKey]; taken && other != id {
			return nil, ErrUserExists
		}
	}

	if username != "" {
		delete(m.byName, strings.ToLower(user.Username))
		m.byName[nameKey] = id
		user.Username = username
	}
	if email != "" {
		delete(m.byEmail, strings.ToLower(user.Email))
		m.byEmail[emailKey] = id
		user.Email = email
	}

	copied := *user
	return &copied, nil
}

// ListSchemas returns the user's records in insertion order.
func (m *Memory) ListSchemas(ctx context.Context, userID string) ([]*model.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.schemas[userID]
	out := make([]*model.Schema, len(records))
	for i, rec := range records {
		copied := *rec
		out[i] = &copied
	}
	return out, nil
}

// AppendSchema adds a record to the end of the user's collection.
func (m *Memory) AppendSchema(ctx context.Context, userID string, schema *model.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *schema
	m.schemas[userID] = append(m.schemas[userID], &stored)
	return nil
}

// DeleteSchema removes the matching record from the user's collection.
func (m *Memory) DeleteSchema(ctx context.Context, userID, schemaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.schemas[userID]
	for i, rec := range records {
		if rec.ID == schemaID {
			m.schemas[userID] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return ErrSchemaNotFound
}

// Ping always succeeds for the in-memory store.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() {}
