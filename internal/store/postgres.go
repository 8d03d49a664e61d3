package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strucbot/strucbot/internal/model"
)

// Postgres backs the store with a pgx connection pool. The demo works
// without it; set DATABASE_URL to keep users and schema records across
// restarts.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store and ensures its tables exist.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return p, nil
}

// ensureTables creates the users and schemas tables if absent.
func (p *Postgres) ensureTables(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (lower(username));
		CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));

		CREATE TABLE IF NOT EXISTS schemas (
			seq        BIGSERIAL,
			id         TEXT NOT NULL,
			user_id    TEXT NOT NULL REFERENCES users(id),
			table_name TEXT NOT NULL,
			columns    JSONB NOT NULL,
			prompt     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, id)
		);
	`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// CreateUser inserts a new user.
func (p *Postgres) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their id.
func (p *Postgres) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`
	return p.scanUser(p.pool.QueryRow(ctx, query, id))
}

// GetUserByLogin retrieves a user by username or email.
func (p *Postgres) GetUserByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE lower(username) = lower($1) OR lower(email) = lower($1)
	`
	return p.scanUser(p.pool.QueryRow(ctx, query, usernameOrEmail))
}

func (p *Postgres) scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateUser overwrites username and/or email; empty fields are kept.
func (p *Postgres) UpdateUser(ctx context.Context, id, username, email string) (*model.User, error) {
	query := `
		UPDATE users
		SET username = COALESCE(NULLIF($2, ''), username),
		    email    = COALESCE(NULLIF($3, ''), email)
		WHERE id = $1
		RETURNING id, username, email, password_hash, role, created_at
	`

	user, err := p.scanUser(p.pool.QueryRow(ctx, query, id, username, email))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// ListSchemas returns the user's records in insertion order.
func (p *Postgres) ListSchemas(ctx context.Context, userID string) ([]*model.Schema, error) {
	query := `
		SELECT id, table_name, columns, prompt, created_at
		FROM schemas
		WHERE user_id = $1
		ORDER BY seq ASC
	`

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	schemas := []*model.Schema{}
	for rows.Next() {
		var (
			schema  model.Schema
			columns []byte
		)
		if err := rows.Scan(&schema.ID, &schema.TableName, &columns, &schema.Prompt, &schema.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		if err := json.Unmarshal(columns, &schema.Columns); err != nil {
			return nil, fmt.Errorf("failed to decode columns: %w", err)
		}
		schemas = append(schemas, &schema)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	return schemas, nil
}

// AppendSchema adds a record to the end of the user's collection.
func (p *Postgres) AppendSchema(ctx context.Context, userID string, schema *model.Schema) error {
	columns, err := json.Marshal(schema.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	query := `
		INSERT INTO schemas (id, user_id, table_name, columns, prompt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := p.pool.Exec(ctx, query,
		schema.ID,
		userID,
		schema.TableName,
		columns,
		schema.Prompt,
		schema.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append schema: %w", err)
	}

	return nil
}

// DeleteSchema removes the matching record from the user's collection.
func (p *Postgres) DeleteSchema(ctx context.Context, userID, schemaID string) error {
	query := `DELETE FROM schemas WHERE user_id = $1 AND id = $2`

	tag, err := p.pool.Exec(ctx, query, userID, schemaID)
	if err != nil {
		return fmt.Errorf("failed to delete schema: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSchemaNotFound
	}
	return nil
}

// Pool exposes the underlying connection pool, mainly for tests.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "unique"))
}
