package client

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/observability"
	"github.com/rentloop/rentloop/pkg/session"
)

func TestLogNotifier_WritesWarning(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(observability.NewLogger(observability.WarnLevel, &buf))

	notifier.Notify("Invalid Credentials")

	assert.Contains(t, buf.String(), "Invalid Credentials")
	assert.Contains(t, buf.String(), "WARN")
}

func TestNew_NilNotifierDefaultsToLogNotifier(t *testing.T) {
	server := newTestServer(t)
	c := New(server.URL, session.NewMemoryTokenStore(), nil)

	assert.IsType(t, &LogNotifier{}, c.notifier)

	// A failing call still notifies and classifies without panicking
	err := c.Login(context.Background(), "nobody@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, auth.KindNotFound, auth.KindOf(err))
}
