package tokens

import (
	"crypto/sha256"
	"encoding/base64"
)

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
// Se usa para derivar keys de cache sin guardar el valor original.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
