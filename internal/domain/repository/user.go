// Package repository define las interfaces de acceso a datos del core de auth.
// Los adapters concretos viven en internal/store.
package repository

import (
	"context"
	"time"
)

// User representa un usuario tal como lo ve el core de auth.
// Otros campos de perfil existen en la tabla pero no nos interesan acá.
type User struct {
	ID           string
	Email        string // siempre lowercased
	PasswordHash string // PHC argon2id; jamás sale por el wire
	FirstName    string
	LastName     string
	Rights       []string // labels de rol: USER, MODERATOR, ADMIN
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// CreateUserInput contiene los datos para el alta por registro.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Rights       []string
}

// UserRepository es el UserDirectory: lo consume el core, lo posee el resto
// del sistema. Acá solo declaramos lo que auth necesita.
type UserRepository interface {
	// GetByID busca por id. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail busca por email (el caller normaliza a lowercase antes).
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create da de alta un usuario. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// TouchLastLogin actualiza el timestamp de último login.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
