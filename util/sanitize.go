package util

import (
	"path"
	"strings"
	"unicode"
)

// SanitizeEnvValue trims s and strips one pair of matching quotes, as left
// behind by hand-edited environment files.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, `'`} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// SanitizeFilename reduces a client-supplied file name to a safe base name:
// directories and control characters are dropped, and anything other than
// letters, digits, '.', '-' and '_' becomes '_'. Returns fallback when
// nothing usable is left.
func SanitizeFilename(name, fallback string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(".-_", r):
			return r
		default:
			return '_'
		}
	}, base)
	clean = strings.TrimLeft(clean, ".")
	if strings.Trim(clean, "_.") == "" {
		return fallback
	}
	return clean
}
