package voucher

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Alphabet excludes the visually ambiguous I, O, 0 and 1. Its length is 32,
// so a random byte modulo 32 is uniform.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Delimiter separates the prefix from the random suffix.
const Delimiter = "-"

// CodeGenerator produces voucher codes such as "VOU-7KQ2MX".
type CodeGenerator struct {
	prefix string
	length int
	rand   io.Reader
}

// NewCodeGenerator returns a generator for prefix + Delimiter + length random
// characters. The prefix is normalized to upper case.
func NewCodeGenerator(prefix string, length int) *CodeGenerator {
	if length <= 0 {
		length = 6
	}
	return &CodeGenerator{
		prefix: Normalize(prefix),
		length: length,
		rand:   rand.Reader,
	}
}

// Generate returns a new random code. Uniqueness is the caller's concern.
func (g *CodeGenerator) Generate() (string, error) {
	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(len(g.prefix) + len(Delimiter) + g.length)
	if g.prefix != "" {
		b.WriteString(g.prefix)
		b.WriteString(Delimiter)
	}
	for _, c := range buf {
		b.WriteByte(Alphabet[int(c)%len(Alphabet)])
	}
	return b.String(), nil
}

// Normalize upper-cases a code and strips all whitespace, so codes read out
// or typed at a till match their stored form.
func Normalize(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, code)
}
