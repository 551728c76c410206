// Package password implementa hashing one-way (argon2id) para secretos en reposo.
// Se usa igual para passwords de usuarios y para el secreto de refresh tokens
// antes de persistirlos.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, SaltLen: 16, KeyLen: 32}

// Hasher produce y verifica digests PHC. El zero value no sirve: usar New.
type Hasher struct {
	p Params
}

func New(p Params) Hasher {
	if p.Memory == 0 {
		p = Default
	}
	return Hasher{p: p}
}

// Hash devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func (h Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty secret")
	}
	salt := make([]byte, h.p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, h.p.Time, h.p.Memory, h.p.Parallelism, h.p.KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		h.p.Memory, h.p.Time, h.p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara plain contra un PHC string almacenado.
// Nunca retorna error: un digest malformado o un mismatch dan false.
func (h Hasher) Verify(phc, plain string) bool {
	if plain == "" {
		return false
	}
	m, t, p, salt, dkStored, ok := parsePHC(phc)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, t, m, p, uint32(len(dkStored)))
	return subtle.ConstantTimeCompare(key, dkStored) == 1
}

// parsePHC desarma $argon2id$v=19$m=..,t=..,p=..$salt$dk. Tolerante: cualquier
// problema de formato retorna ok=false, jamás panic.
func parsePHC(phc string) (m, t uint32, p uint8, salt, dk []byte, ok bool) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" || parts[2] != "v=19" {
		return 0, 0, 0, nil, nil, false
	}
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return 0, 0, 0, nil, nil, false
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, 0, 0, nil, nil, false
		}
		switch k {
		case "m":
			m = uint32(n)
		case "t":
			t = uint32(n)
		case "p":
			if n > 255 {
				return 0, 0, 0, nil, nil, false
			}
			p = uint8(n)
		default:
			return 0, 0, 0, nil, nil, false
		}
	}
	if m == 0 || t == 0 || p == 0 {
		return 0, 0, 0, nil, nil, false
	}
	var err error
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return 0, 0, 0, nil, nil, false
	}
	if dk, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(dk) == 0 {
		return 0, 0, 0, nil, nil, false
	}
	return m, t, p, salt, dk, true
}
