package pkg

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText remove tags HTML e caracteres nao imprimiveis de textos
// vindos de importacao, colapsando espacos.
func SanitizeText(s string) string {
	s = strictPolicy.Sanitize(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
