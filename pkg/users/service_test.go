package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/observability"
)

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, observability.NewLogger(observability.ErrorLevel, nil)), store
}

func TestCreateThenVerify(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleRenter, created.Role)
	assert.NotEmpty(t, created.ID)

	verified, err := svc.Verify(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, verified.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name, userName, email, secret string
		role                          auth.Role
	}{
		{"missing name", "", "a@x.com", "password1", ""},
		{"missing email", "Alice", "", "password1", ""},
		{"missing secret", "Alice", "a@x.com", "", ""},
		{"short secret", "Alice", "a@x.com", "seven77", ""},
		{"bad role", "Alice", "a@x.com", "password1", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.userName, tt.email, tt.secret, tt.role)
			require.Error(t, err)
			assert.Equal(t, auth.KindValidation, auth.KindOf(err))
			assert.Equal(t, "Fill all the fields", err.Error())
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	// Duplicate regardless of the secret supplied
	_, err = svc.Create(ctx, "Mallory", "a@x.com", "differentsecret", "")
	require.Error(t, err)
	assert.Equal(t, auth.KindDuplicateEmail, auth.KindOf(err))
	assert.Equal(t, "User already exists", err.Error())
}

func TestCreate_SecretNeverStoredPlaintext(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	stored, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password1", stored.SecretHash)
	assert.NotContains(t, stored.SecretHash, "password1")
}

func TestVerify_Failures(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "missing@x.com", "password1")
	assert.Equal(t, auth.KindNotFound, auth.KindOf(err))
	assert.Equal(t, "User not found", err.Error())

	_, err = svc.Verify(ctx, "a@x.com", "wrongsecret")
	assert.Equal(t, auth.KindInvalidCredentials, auth.KindOf(err))
	assert.Equal(t, "Invalid Credentials", err.Error())
}

func TestVerify_Idempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Alice", "a@x.com", "password1", "")
	require.NoError(t, err)

	before, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		verified, err := svc.Verify(ctx, "a@x.com", "password1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, verified.ID)
	}

	after, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
}

func TestLoadByID_StripsSecretMaterial(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Bob", "b@x.com", "password1", auth.RoleOwner)
	require.NoError(t, err)

	loaded, err := svc.LoadByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, auth.RoleOwner, loaded.Role)
	assert.Empty(t, loaded.SecretHash)

	_, err = svc.LoadByID(ctx, "missing")
	assert.Equal(t, auth.KindNotFound, auth.KindOf(err))
}
