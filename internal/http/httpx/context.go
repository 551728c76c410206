package httpx

import (
	"context"

	"github.com/dropDatabas3/gatehouse/internal/authz"
	"github.com/dropDatabas3/gatehouse/internal/jwt"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyClaims
	ctxKeyIdentity
)

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func WithClaims(ctx context.Context, c *jwt.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

func GetClaims(ctx context.Context) *jwt.Claims {
	if v, ok := ctx.Value(ctxKeyClaims).(*jwt.Claims); ok {
		return v
	}
	return nil
}

// WithIdentity guarda el principal autenticado (usuario recargado de la base,
// no solo claims). Lo setea el middleware de auth.
func WithIdentity(ctx context.Context, id *authz.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func GetIdentity(ctx context.Context) *authz.Identity {
	if v, ok := ctx.Value(ctxKeyIdentity).(*authz.Identity); ok {
		return v
	}
	return nil
}

// GetUserID es un atajo sobre la identidad del contexto.
func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.UserID
	}
	return ""
}
