package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Hash lower-cases and trims v, then returns its hex-encoded SHA-256 digest.
// An empty value (after normalization) yields "" so callers can drop the key.
func Hash(v string) string {
	n := Normalize(v)
	if n == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(n))
	return hex.EncodeToString(sum[:])
}

// Normalize applies the generic matching rule: lower-case and trim.
func Normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NormalizePhone keeps only the digits of v.
func NormalizePhone(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCity lower-cases v and removes every whitespace rune.
func NormalizeCity(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(v))
}

// NormalizeState lower-cases and trims v.
func NormalizeState(v string) string {
	return Normalize(v)
}

// NormalizeCountry returns the lower-cased two-letter code in v, or def when
// v is longer than two characters. Empty input stays empty.
func NormalizeCountry(v, def string) string {
	n := Normalize(v)
	if n == "" {
		return ""
	}
	if len([]rune(n)) > 2 {
		return Normalize(def)
	}
	return n
}
