package id

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	token := NewToken()
	assert.Len(t, token, 64)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	seen := make(map[string]bool, 200)
	for i := 0; i < 200; i++ {
		next := NewToken()
		require.False(t, seen[next], "token collision after %d draws", i)
		seen[next] = true
	}
}
