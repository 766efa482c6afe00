package helpers

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dropDatabas3/authcore/internal/http/errors"
)

// Validator acumula los campos inválidos de un request.
//
//	var v helpers.Validator
//	v.MinLen("code", in.Code, 32)
//	v.URL("redirect_uri", in.RedirectURI)
//	if err := v.Err(); err != nil { ... }
type Validator struct {
	fields []string
}

func (v *Validator) fail(name string) {
	for _, f := range v.fields {
		if f == name {
			return
		}
	}
	v.fields = append(v.fields, name)
}

func (v *Validator) Required(name, val string) {
	if strings.TrimSpace(val) == "" {
		v.fail(name)
	}
}

func (v *Validator) MinLen(name, val string, n int) {
	if utf8.RuneCountInString(val) < n {
		v.fail(name)
	}
}

// URL exige una URL absoluta con esquema y host.
// URL exige una URL absoluta sin espacios alrededor; no normaliza.
func (v *Validator) URL(name, val string) {
	u, err := url.Parse(val)
	if err != nil || u.Scheme == "" || u.Host == "" || strings.TrimSpace(val) != val {
		v.fail(name)
	}
}

func (v *Validator) Email(name, val string) {
	a, err := mail.ParseAddress(val)
	if err != nil || a.Address != strings.TrimSpace(val) {
		v.fail(name)
	}
}

func (v *Validator) Equals(name, val, want string) {
	if val != want {
		v.fail(name)
	}
}

// Fields devuelve los campos inválidos en orden de chequeo.
func (v *Validator) Fields() []string { return v.fields }

// Err es nil si todo validó; si no, invalid_request.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return errors.ErrInvalidRequest.WithMessage("Invalid request: " + strings.Join(v.fields, ", "))
}
