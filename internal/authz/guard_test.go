package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatehouse/internal/auth"
)

func TestAuthorize(t *testing.T) {
	user := &Identity{UserID: "u-1", Roles: []Role{RoleUser}}
	adminUser := &Identity{UserID: "u-2", Roles: []Role{RoleAdmin, RoleUser}}

	t.Run("sin roles requeridos siempre permite", func(t *testing.T) {
		assert.NoError(t, Authorize(user))
		assert.NoError(t, Authorize(nil))
	})

	t.Run("identidad ausente", func(t *testing.T) {
		err := Authorize(nil, RoleUser)
		require.Error(t, err)
		var ae *auth.Error
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, auth.KindForbidden, ae.Kind)
		assert.Equal(t, "not_authenticated", ae.Code)
	})

	t.Run("USER contra ADMIN es forbidden", func(t *testing.T) {
		err := Authorize(user, RoleAdmin)
		require.Error(t, err)
		var ae *auth.Error
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, auth.KindForbidden, ae.Kind)
		assert.Equal(t, "insufficient_role", ae.Code)
	})

	t.Run("ADMIN+USER contra ADMIN permite", func(t *testing.T) {
		assert.NoError(t, Authorize(adminUser, RoleAdmin))
	})

	t.Run("alcanza con intersecar uno", func(t *testing.T) {
		assert.NoError(t, Authorize(user, RoleAdmin, RoleUser))
	})

	t.Run("la causa interna lleva ambos conjuntos", func(t *testing.T) {
		err := Authorize(user, RoleAdmin)
		require.Error(t, err)
		assert.Contains(t, errors.Unwrap(err.(*auth.Error)).Error(), "ADMIN")
		assert.Contains(t, errors.Unwrap(err.(*auth.Error)).Error(), "USER")
	})
}

func TestParseRoles(t *testing.T) {
	got := ParseRoles([]string{"admin", " USER ", "superhero", "Moderator"})
	assert.Equal(t, []Role{RoleAdmin, RoleUser, RoleModerator}, got)
}
