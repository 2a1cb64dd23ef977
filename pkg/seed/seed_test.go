package seed

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/observability"
	"github.com/rentloop/rentloop/pkg/users"
)

const seedDoc = `
owner:
  name: Greatstack Fleet
  email: fleet@example.com
  password: fleet-password
cars:
  - brand: BMW
    model: X5
    image: https://cdn.example.com/bmw-x5.png
    year: 2006
    category: SUV
    seating_capacity: 4
    fuel_type: Hybrid
    transmission: Semi-Automatic
    price_per_day: 300
    location: New York
    description: The BMW X5 is a mid-size luxury SUV.
  - brand: Toyota
    model: Corolla
    image: https://cdn.example.com/corolla.png
    year: 2021
    category: Sedan
    seating_capacity: 4
    fuel_type: Diesel
    transmission: Manual
    price_per_day: 130
    location: Chicago
    description: A reliable everyday sedan.
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	file, err := Load(writeSeedFile(t, seedDoc))
	require.NoError(t, err)

	assert.Equal(t, "fleet@example.com", file.Owner.Email)
	require.Len(t, file.Cars, 2)
	assert.Equal(t, "BMW", file.Cars[0].Brand)
	assert.Equal(t, 300.0, file.Cars[0].PricePerDay)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no owner", "cars:\n  - brand: BMW\n    model: X5\n    location: NY\n    price_per_day: 10\n"},
		{"no cars", "owner:\n  email: a@b.c\n  password: password1\n"},
		{"car missing price", seedDoc + "  - brand: Kia\n    model: Rio\n    location: LA\n"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSeedFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	carStore := cars.NewSQLStore(db, nil)
	require.NoError(t, carStore.EnsureSchema(ctx))

	logger := observability.NewLogger(observability.ErrorLevel, nil)
	userService := users.NewService(users.NewMemoryStore(), logger)

	file, err := Load(writeSeedFile(t, seedDoc))
	require.NoError(t, err)

	require.NoError(t, Apply(ctx, file, userService, carStore))

	owner, err := userService.Verify(ctx, "fleet@example.com", "fleet-password")
	require.NoError(t, err)

	listed, err := carStore.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	// Re-applying the same file must not duplicate the catalog
	require.NoError(t, Apply(ctx, file, userService, carStore))
	listed, err = carStore.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
