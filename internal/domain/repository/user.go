package repository

import (
	"context"
	"time"
)

// RoleUser es el rol que recibe todo usuario registrado.
const RoleUser = "user"

// User representa un usuario con credencial de password.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserWithRoles es la vista que necesita el emisor de tokens.
type UserWithRoles struct {
	ID    string
	Email string
	Roles []string
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	Roles        []string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// Create crea el usuario con sus roles. ErrConflict si el email existe.
	Create(ctx context.Context, input CreateUserInput) (*UserWithRoles, error)

	// GetByEmail retorna ErrNotFound si no existe. El email se compara normalizado.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetRolesByID retorna ErrNotFound si no existe.
	GetRolesByID(ctx context.Context, userID string) (*UserWithRoles, error)
}
