package service

import (
	"math/rand/v2"

	"github.com/iliyamo/pickflick/internal/model"
)

// CodeAlphabet is the symbol set of session codes.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator produces candidate session codes.  Uniqueness is not its
// concern; SessionService retries against the store.
type CodeGenerator interface {
	Generate() string
}

// RandomCodeGenerator draws each character independently and uniformly from
// CodeAlphabet.
type RandomCodeGenerator struct {
	intn func(n int) int
}

// NewCodeGenerator returns a generator backed by the runtime's ChaCha8
// source, which is safe for concurrent use.
func NewCodeGenerator() *RandomCodeGenerator {
	return &RandomCodeGenerator{intn: rand.IntN}
}

func (g *RandomCodeGenerator) Generate() string {
	b := make([]byte, model.SessionCodeLength)
	for i := range b {
		b[i] = CodeAlphabet[g.intn(len(CodeAlphabet))]
	}
	return string(b)
}

// ValidCode reports whether s is exactly six characters of CodeAlphabet.
// Callers normalise case first.
func ValidCode(s string) bool {
	if len(s) != model.SessionCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
