// Package errors traduce errores de dominio a respuestas HTTP
// {"error": code, "message": msg}.
package errors

import (
	"fmt"
	"net/http"
)

// AppError es el error estándar de la capa HTTP.
type AppError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"` // solo para el status line
	Err        error  `json:"-"` // causa, para logs; nunca se expone
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente.
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// WithMessage devuelve una COPIA con otro mensaje.
func (e *AppError) WithMessage(msg string) *AppError {
	newErr := *e
	newErr.Message = msg
	return &newErr
}

// WithCause devuelve una COPIA con la causa adjunta.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400
var (
	ErrInvalidRequest = &AppError{
		Code:       "invalid_request",
		Message:    "Invalid request",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidClient = &AppError{
		Code:       "invalid_client",
		Message:    "Unknown client",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidRedirectURI = &AppError{
		Code:       "invalid_redirect_uri",
		Message:    "Invalid redirect uri",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidGrant = &AppError{
		Code:       "invalid_grant",
		Message:    "Invalid grant",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnsupportedGrantType = &AppError{
		Code:       "unsupported_grant_type",
		Message:    "Unsupported grant_type",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "invalid_request",
		Message:    "Request body too large",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401 / 403
var (
	ErrInvalidCredentials = &AppError{
		Code:       "invalid_credentials",
		Message:    "Invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "unauthorized",
		Message:    "Missing access token",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "unauthorized",
		Message:    "Invalid access token",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "unauthorized",
		Message:    "Access token expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrOriginNotAllowed = &AppError{
		Code:       "origin_not_allowed",
		Message:    "Origin not allowed",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 / 405 / 409 / 429
var (
	ErrNotFound = &AppError{
		Code:       "not_found",
		Message:    "Not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUserNotFound = &AppError{
		Code:       "user_not_found",
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "method_not_allowed",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrEmailExists = &AppError{
		Code:       "email_exists",
		Message:    "Email already registered",
		HTTPStatus: http.StatusConflict,
	}

	ErrRateLimited = &AppError{
		Code:       "rate_limited",
		Message:    "Too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 5xx
var (
	ErrInternalServerError = &AppError{
		Code:       "server_error",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "service_unavailable",
		Message:    "Service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
