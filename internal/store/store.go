// Package store provides the persistence layer for users and schema
// records. Handlers and services only see the interfaces here, so the
// in-memory demo store and the Postgres store are interchangeable.
package store

import (
	"context"
	"errors"

	"github.com/strucbot/strucbot/internal/model"
)

// Common errors for store operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("username or email already exists")
	ErrSchemaNotFound = errors.New("schema not found")
)

// UserStore holds registered accounts.
type UserStore interface {
	// CreateUser inserts a new user and initializes an empty schema
	// collection for it. Returns ErrUserExists when the username or
	// email is already taken.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByID returns the user with the given id, or ErrUserNotFound.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// GetUserByLogin looks a user up by username or email.
	GetUserByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error)

	// UpdateUser overwrites username and/or email for the given user.
	// Empty fields are left unchanged. Returns ErrUserNotFound if the
	// user is absent and ErrUserExists when a new value collides with
	// another account.
	UpdateUser(ctx context.Context, id, username, email string) (*model.User, error)
}

// SchemaStore holds each user's ordered collection of generated
// schema records.
type SchemaStore interface {
	// ListSchemas returns the user's records in insertion order,
	// most recently added last. Unknown users get an empty slice.
	ListSchemas(ctx context.Context, userID string) ([]*model.Schema, error)

	// AppendSchema adds a record to the end of the user's collection.
	AppendSchema(ctx context.Context, userID string, schema *model.Schema) error

	// DeleteSchema removes the record with the given id from the
	// user's collection. Returns ErrSchemaNotFound when no such record
	// belongs to that user.
	DeleteSchema(ctx context.Context, userID, schemaID string) error
}

// Store is the full persistence surface the application wires up.
type Store interface {
	UserStore
	SchemaStore

	// Ping checks backend connectivity (always nil for the memory store).
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close()
}
