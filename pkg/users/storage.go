package users

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/observability"
)

// Store persists user identity records
type Store interface {
	Create(ctx context.Context, user *auth.User) error
	GetByEmail(ctx context.Context, email string) (*auth.User, error)
	GetByID(ctx context.Context, id string) (*auth.User, error)
}

// SQLStore implements Store over database/sql. The same statements run on
// PostgreSQL (lib/pq) and SQLite; both drivers accept $N placeholders.
//
// Note: email uniqueness is enforced by a pre-check in the service, not by
// a storage constraint, matching the production system's behavior.
type SQLStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewSQLStore creates a SQL-backed user store. metrics may be nil.
func NewSQLStore(db *sql.DB, metrics *observability.Metrics) *SQLStore {
	return &SQLStore{db: db, metrics: metrics}
}

func (s *SQLStore) observe(operation string, start time.Time, err *error) {
	if s.metrics != nil {
		s.metrics.ObserveStorage(operation, start, *err)
	}
}

// EnsureSchema creates the users table if it does not exist
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL,
			secret_hash TEXT NOT NULL,
			role        TEXT NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// Create inserts a new user record
func (s *SQLStore) Create(ctx context.Context, user *auth.User) (err error) {
	defer s.observe("users_create", time.Now(), &err)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, secret_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.SecretHash, string(user.Role), user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail resolves a user by email. Lookup is case-sensitive, as stored.
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (user *auth.User, err error) {
	defer s.observe("users_get_by_email", time.Now(), &err)

	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, secret_hash, role, created_at
		FROM users WHERE email = $1
	`, email))
}

// GetByID resolves a user by id
func (s *SQLStore) GetByID(ctx context.Context, id string) (user *auth.User, err error) {
	defer s.observe("users_get_by_id", time.Now(), &err)

	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, secret_hash, role, created_at
		FROM users WHERE id = $1
	`, id))
}

func (s *SQLStore) scanOne(row *sql.Row) (*auth.User, error) {
	user := &auth.User{}
	var role string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.SecretHash, &role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, auth.E(auth.KindNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.Role = auth.Role(role)
	return user, nil
}

// MemoryStore is an in-process Store for development and tests
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*auth.User
	byEmail map[string]*auth.User
}

// NewMemoryStore creates an empty in-memory user store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*auth.User),
		byEmail: make(map[string]*auth.User),
	}
}

// Create inserts a new user record
func (s *MemoryStore) Create(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.byID[user.ID] = &clone
	s.byEmail[user.Email] = &clone
	return nil
}

// GetByEmail resolves a user by email
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, auth.E(auth.KindNotFound, "User not found")
	}
	clone := *user
	return &clone, nil
}

// GetByID resolves a user by id
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, auth.E(auth.KindNotFound, "User not found")
	}
	clone := *user
	return &clone, nil
}

// Delete removes a user record. Used by administrative tooling and tests;
// not exposed through the API.
func (s *MemoryStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		delete(s.byEmail, user.Email)
		delete(s.byID, id)
	}
}
