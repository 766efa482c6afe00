// Package util tiene helpers chicos sin dependencias del dominio.
package util

import (
	"strings"
	"unicode/utf8"
)

// MaskEmail deja la primera letra del usuario y del dominio:
// "ana.perez@example.com" -> "a…@e….com". Pensado para logs.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	user, domain, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		return maskPart(s)
	}
	host, tld, hasTLD := strings.Cut(domain, ".")
	out := maskPart(user) + "@" + maskPart(host)
	if hasTLD {
		out += "." + tld
	}
	return out
}

func maskPart(s string) string {
	if utf8.RuneCountInString(s) <= 1 {
		return s
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(r) + "…"
}
