// Package helpers agrupa utilidades de request/response para los controllers.
package helpers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authcore/internal/http/errors"
)

// MaxBodyBytes limita cualquier body JSON o form.
const MaxBodyBytes = 64 << 10

// ReadJSON decodifica el body en v. Los campos desconocidos se ignoran; un
// Content-Type ajeno o un JSON inválido es invalid_request y un body mayor a
// MaxBodyBytes es ErrBodyTooLarge.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if !hasContentType(r, "application/json") {
		return errors.ErrInvalidRequest.WithMessage("Content-Type must be application/json")
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.ErrBodyTooLarge
		}
		if stderrors.Is(err, io.EOF) {
			return errors.ErrInvalidRequest.WithMessage("Empty body")
		}
		return errors.ErrInvalidRequest.WithCause(err)
	}
	return nil
}

// ReadJSONOrForm acepta JSON o application/x-www-form-urlencoded. En el caso
// form, fromForm copia los valores a v.
func ReadJSONOrForm(w http.ResponseWriter, r *http.Request, v any, fromForm func(get func(string) string)) error {
	if !hasContentType(r, "application/x-www-form-urlencoded") {
		return ReadJSON(w, r, v)
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.ErrBodyTooLarge
		}
		return errors.ErrInvalidRequest.WithCause(err)
	}
	fromForm(r.PostForm.Get)
	return nil
}

func hasContentType(r *http.Request, want string) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.EqualFold(mt, want)
}

// WriteJSON escribe v como JSON con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRawJSON escribe un documento ya serializado (ej: JWKS cacheado).
func WriteRawJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
