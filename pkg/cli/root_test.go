package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{
		"register", "login", "logout", "whoami",
		"cars", "availability", "book", "bookings", "owner",
	} {
		cmd, ok := root.Subcommands[name]
		require.True(t, ok, "missing command %s", name)
		assert.NotNil(t, cmd.Run)
		assert.NotEmpty(t, cmd.Description)
	}
}

func TestParseDates(t *testing.T) {
	pickup, ret, err := parseDates("2026-09-10", "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), pickup)
	assert.Equal(t, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), ret)

	_, _, err = parseDates("next tuesday", "2026-09-12")
	assert.Error(t, err)
	_, _, err = parseDates("2026-09-10", "")
	assert.Error(t, err)
}

func TestRunOwner_Usage(t *testing.T) {
	assert.Error(t, runOwner(nil))
}
