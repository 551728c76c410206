// Package authz decide acceso por rol. La decisión es una intersección de
// conjuntos pura: el guard no conoce rutas ni transporte, solo identidades.
package authz

import "strings"

// Role es la enumeración cerrada de roles del sistema.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole normaliza un rol del wire/DB a la enumeración. Un valor
// desconocido devuelve false: se descarta, no se adivina.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleModerator:
		return RoleModerator, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// ParseRoles filtra los valores desconocidos sin fallar: una fila con un rol
// legacy no debe romper el login, solo pierde ese derecho.
func ParseRoles(ss []string) []Role {
	out := make([]Role, 0, len(ss))
	for _, s := range ss {
		if r, ok := ParseRole(s); ok {
			out = append(out, r)
		}
	}
	return out
}

// Strings es la conversión inversa, para claims y respuestas.
func Strings(rs []Role) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
