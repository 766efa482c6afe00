package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/authcore/internal/auth"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
)

// FromError convierte cualquier error en un AppError. Los errores del motor
// y del codec tienen traducción fija; el resto es server_error.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch {
	case stderrors.Is(err, auth.ErrUnknownClient):
		return ErrInvalidClient.WithCause(err)
	case stderrors.Is(err, auth.ErrInvalidRedirectURI):
		return ErrInvalidRedirectURI.WithCause(err)
	case stderrors.Is(err, auth.ErrInvalidGrant):
		return ErrInvalidGrant.WithCause(err)
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		return ErrInvalidCredentials.WithCause(err)
	case stderrors.Is(err, auth.ErrUserNotFound):
		return ErrUserNotFound.WithCause(err)
	case stderrors.Is(err, auth.ErrInvalidRequest):
		return ErrInvalidRequest.WithCause(err)
	case stderrors.Is(err, auth.ErrEmailExists):
		return ErrEmailExists.WithCause(err)
	case stderrors.Is(err, auth.ErrUnsupportedGrant):
		return ErrUnsupportedGrantType.WithCause(err)
	case stderrors.Is(err, jwtx.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	case stderrors.Is(err, jwtx.ErrInvalidToken), stderrors.Is(err, jwtx.ErrClaimMismatch):
		return ErrTokenInvalid.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe {"error": code, "message": msg} con el status del AppError.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if appErr.Code == ErrTokenInvalid.Code {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr)
}
