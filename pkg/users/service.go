package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/observability"
)

// Service provides credential store operations
type Service struct {
	store  Store
	logger *observability.Logger
}

// NewService creates a new users service
func NewService(store Store, logger *observability.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create registers a new user. The email must not already be registered
// (pre-checked by lookup) and the secret must be at least 8 characters.
// The secret is hashed before storage and not retained.
func (s *Service) Create(ctx context.Context, name, email, secret string, role auth.Role) (*auth.User, error) {
	if name == "" || email == "" || len(secret) < auth.MinSecretLength {
		return nil, auth.E(auth.KindValidation, "Fill all the fields")
	}
	if role == "" {
		role = auth.RoleRenter
	}
	if !role.Valid() {
		return nil, auth.E(auth.KindValidation, "Fill all the fields")
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !auth.IsKind(err, auth.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, auth.E(auth.KindDuplicateEmail, "User already exists")
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		SecretHash: hash,
		Role:       role,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Verify resolves a user by email and checks the secret against the stored
// hash. It never mutates the record, so repeated calls with the same correct
// credentials always resolve the same subject.
func (s *Service) Verify(ctx context.Context, email, secret string) (*auth.User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := auth.CompareSecret(user.SecretHash, secret); err != nil {
		return nil, err
	}

	return user, nil
}

// LoadByID resolves a subject id to its user record with secret material
// stripped. This is the lookup the auth gate performs per request.
func (s *Service) LoadByID(ctx context.Context, id string) (*auth.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}
