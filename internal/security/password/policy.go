package password

import (
	"errors"
	"strings"
	"unicode"
)

// ErrWeakPassword envuelve las razones por las que Policy rechazó un password.
var ErrWeakPassword = errors.New("weak password")

// Policy define los requisitos para passwords nuevos. El zero value solo
// exige que no esté vacío.
type Policy struct {
	MinLength int
	// MaxLength acota el costo de argon2 por request. 0 = sin límite.
	MaxLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
	Blacklist     *Blacklist
}

// DefaultPolicy: mínimo 8, máximo 128.
var DefaultPolicy = Policy{MinLength: 8, MaxLength: 128}

// Reasons devuelve los códigos de cada requisito incumplido (vacío si ok).
func (p Policy) Reasons(s string) []string {
	var reasons []string
	n := len([]rune(s))
	if n == 0 {
		return []string{"empty"}
	}
	if n < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		reasons = append(reasons, "too_long")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	if p.Blacklist.Contains(s) {
		reasons = append(reasons, "blacklisted")
	}
	return reasons
}

// Check retorna ErrWeakPassword (con las razones en el mensaje) o nil.
func (p Policy) Check(s string) error {
	if r := p.Reasons(s); len(r) > 0 {
		return &PolicyError{Reasons: r}
	}
	return nil
}

// PolicyError lista los requisitos incumplidos. errors.Is(err, ErrWeakPassword) es true.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return ErrWeakPassword.Error() + ": " + strings.Join(e.Reasons, ",")
}

func (e *PolicyError) Unwrap() error { return ErrWeakPassword }
