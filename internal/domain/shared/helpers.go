package shared

import (
	"strings"
)

func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "violates unique constraint")
}

func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	words := strings.Fields(name)
	normalized := make([]string, 0, len(words))
	for _, word := range words {
		runes := []rune(word)
		normalized = append(normalized, strings.ToUpper(string(runes[0]))+strings.ToLower(string(runes[1:])))
	}
	return strings.Join(normalized, " ")
}

// NormalizeLabel gera a chave de comparacao de apelidos (cartoes, categorias).
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
