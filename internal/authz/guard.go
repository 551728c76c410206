package authz

import (
	"fmt"

	"github.com/dropDatabas3/gatehouse/internal/auth"
)

// Identity es el principal ya autenticado que llega al guard. La arma el
// middleware de identidad a partir de los claims verificados y el usuario
// recargado de la base.
type Identity struct {
	UserID string
	Email  string
	Roles  []Role
}

// Has informa si la identidad porta el rol.
func (id *Identity) Has(r Role) bool {
	for _, have := range id.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Authorize permite el acceso si el conjunto de roles de la identidad
// interseca required. required vacío permite siempre (la autenticación ya
// fue el único gate). Identidad ausente falla not_authenticated; intersección
// vacía falla insufficient_role. La causa interna lleva ambos conjuntos para
// diagnóstico, pero jamás viaja al caller.
func Authorize(id *Identity, required ...Role) error {
	if len(required) == 0 {
		return nil
	}
	if id == nil {
		return auth.ErrNotAuthenticated
	}
	for _, want := range required {
		if id.Has(want) {
			return nil
		}
	}
	return auth.ErrInsufficientRole.WithErr(
		fmt.Errorf("user %s: required %v, actual %v", id.UserID, required, id.Roles),
	)
}
