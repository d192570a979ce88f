package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadTunables_Success tests reading overrides and invalid values.
func TestReadTunables_Success(t *testing.T) {
	t.Parallel()

	handler := NewHandler(&fakeConfigProvider{data: map[string]string{
		KeyMaxRetries:    "5",
		KeyFailureLimit:  "abc",
		KeyErrorCapacity: "20",
	}})

	tun, err := handler.ReadTunables("state.env")
	require.NoError(t, err)

	assert.Equal(t, Tunables{
		MaxRetries:       5,
		FailureLimit:     -1,
		ErrorCapacity:    20,
		ConflictAttempts: -1,
	}, tun)
}
