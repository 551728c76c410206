package auth

import "fmt"

// Kind clasifica las fallas tipadas del core de auth. Solo los services
// (auth, authz) generan estos errores; las capas de abajo devuelven
// sentinels (repository.ErrNotFound, etc.) o bools.
type Kind int

const (
	KindConflict Kind = iota + 1
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindUnavailable
)

// Error es la falla tipada que viaja hacia el transporte.
// Code y Desc son estables y aptos para el wire; Err es la causa interna
// (diagnóstico) y jamás se serializa hacia el caller.
type Error struct {
	Kind Kind
	Code string
	Desc string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// WithErr clona el error agregando la causa interna.
func (e *Error) WithErr(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Desc: e.Desc, Err: err}
}

// Fallas predefinidas. invalid_credentials cubre a propósito tanto "email
// desconocido" como "password incorrecto": mismo code, mismo texto, para no
// filtrar enumeración de usuarios. account_deactivated sí se distingue
// (decisión registrada en DESIGN.md).
var (
	ErrUserExists         = &Error{Kind: KindConflict, Code: "email_taken", Desc: "ya existe un usuario con ese email"}
	ErrInvalidCredentials = &Error{Kind: KindNotFound, Code: "invalid_credentials", Desc: "credenciales inválidas"}
	ErrAccountDeactivated = &Error{Kind: KindUnauthorized, Code: "account_deactivated", Desc: "la cuenta está desactivada"}
	ErrRefreshMissing     = &Error{Kind: KindUnauthorized, Code: "refresh_token_missing", Desc: "falta el refresh token"}
	ErrRefreshInvalid     = &Error{Kind: KindUnauthorized, Code: "refresh_token_invalid", Desc: "refresh token inválido"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Code: "user_not_found", Desc: "usuario inexistente"}
	ErrMissingIdentity    = &Error{Kind: KindUnauthorized, Code: "missing_identity", Desc: "no hay identidad en el contexto"}
	ErrTokenInvalid       = &Error{Kind: KindUnauthorized, Code: "invalid_token", Desc: "token inválido o ausente"}
	ErrNotAuthenticated   = &Error{Kind: KindForbidden, Code: "not_authenticated", Desc: "se requiere autenticación"}
	ErrInsufficientRole   = &Error{Kind: KindForbidden, Code: "insufficient_role", Desc: "rol insuficiente"}
)

// Unavailable envuelve una falla de infraestructura (store, hash) como
// service_unavailable. Un timeout del store jamás debe verse como
// "no autenticado".
func Unavailable(err error) *Error {
	return &Error{
		Kind: KindUnavailable,
		Code: "service_unavailable",
		Desc: "error interno, reintentá más tarde",
		Err:  fmt.Errorf("downstream: %w", err),
	}
}
