// Package jwt emite y verifica las credenciales firmadas del sistema:
// access tokens (corta vida) y refresh tokens (vida larga). Ambos comparten
// la misma forma de claims; solo cambia el TTL.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken cubre firma inválida, algoritmo incorrecto, expiración y
// claims malformados. No distinguimos causas hacia afuera.
var ErrInvalidToken = errors.New("invalid_token")

// Claims es la vista verificada de un token. Nunca se persiste.
type Claims struct {
	Subject   string
	Rights    []string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer firma tokens con una clave simétrica (HS256) cargada al arranque.
// Es puro: no toca store ni red. La verificación tampoco consulta revocación;
// eso es responsabilidad del SessionStore (refresh) o del Denylist (access).
type Issuer struct {
	secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now es inyectable para tests. Default: time.Now.
	Now func() time.Time
}

func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{
		secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        time.Now,
	}
}

// IssueAccess emite un access token para sub con sus rights.
func (i *Issuer) IssueAccess(sub string, rights []string) (string, time.Time, error) {
	return i.issue(sub, rights, i.AccessTTL)
}

// IssueRefresh emite un refresh token (misma forma, TTL largo).
func (i *Issuer) IssueRefresh(sub string, rights []string) (string, time.Time, error) {
	return i.issue(sub, rights, i.RefreshTTL)
}

func (i *Issuer) issue(sub string, rights []string, ttl time.Duration) (string, time.Time, error) {
	now := i.Now().UTC()
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{
		"sub":    sub,
		"rights": rights,
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"exp":    exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify valida firma y expiración. El algoritmo está clavado a HS256: un
// token con otro "alg" (incluido "none") falla sin mirar la firma.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	tk, err := jwtv5.Parse(raw,
		func(t *jwtv5.Token) (any, error) { return i.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithTimeFunc(i.Now),
	)
	if err != nil || !tk.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	c := &Claims{Subject: sub}
	if jti, ok := mc["jti"].(string); ok {
		c.JTI = jti
	}
	if iatf, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iatf), 0).UTC()
	}
	if expf, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(expf), 0).UTC()
	}
	switch v := mc["rights"].(type) {
	case []any:
		for _, r := range v {
			if s, ok := r.(string); ok {
				c.Rights = append(c.Rights, s)
			}
		}
	case []string:
		c.Rights = v
	}
	return c, nil
}
