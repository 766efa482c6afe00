package repository

import "errors"

var (
	// ErrNotFound indica que el recurso no existe (o ya no es utilizable).
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto: duplicado, o una mutación que perdió
	// contra otra concurrente (ej: rotación de un token ya revocado).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
