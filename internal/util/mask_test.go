package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"ana.perez@example.com": "a…@e….com",
		" Bob@Mail.co.uk ":      "b…@m….co.uk",
		"x@y":                   "x@y",
		"ñandú@dominio.ar":      "ñ…@d….ar",
		"not-an-email":          "n…",
		"@example.com":          "@…",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
