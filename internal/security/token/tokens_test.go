package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Base64URL(t *testing.T) {
	// sha256 de 32 bytes -> 43 chars base64url sin padding
	out := SHA256Base64URL("jti-123")
	assert.Len(t, out, 43)
	assert.NotContains(t, out, "=")

	assert.Equal(t, out, SHA256Base64URL("jti-123"), "determinístico")
	assert.NotEqual(t, out, SHA256Base64URL("jti-124"))
}
