package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedCodesAreValid(t *testing.T) {
	g := NewCodeGenerator()
	for i := 0; i < 1000; i++ {
		code := g.Generate()
		require.Truef(t, ValidCode(code), "invalid code %q", code)
	}
}

// Every position is drawn independently; a chi-square test on the first
// character catches a skewed alphabet mapping.
func TestGeneratedCodesCoverAlphabetUniformly(t *testing.T) {
	const samples = 36_000
	g := NewCodeGenerator()
	counts := make(map[byte]int, len(CodeAlphabet))
	for i := 0; i < samples; i++ {
		counts[g.Generate()[0]]++
	}
	require.Len(t, counts, len(CodeAlphabet))

	expected := float64(samples) / float64(len(CodeAlphabet))
	chi := 0.0
	for i := 0; i < len(CodeAlphabet); i++ {
		d := float64(counts[CodeAlphabet[i]]) - expected
		chi += d * d / expected
	}
	// 35 degrees of freedom; 90 is far beyond p = 0.0001.
	assert.Less(t, chi, 90.0)
}

func TestGenerateUsesInjectedSource(t *testing.T) {
	g := &RandomCodeGenerator{intn: func(n int) int { return n - 1 }}
	assert.Equal(t, "999999", g.Generate())
	g = &RandomCodeGenerator{intn: func(int) int { return 0 }}
	assert.Equal(t, "AAAAAA", g.Generate())
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("AB12CD"))
	assert.True(t, ValidCode("000000"))
	assert.False(t, ValidCode("ab12cd"), "callers normalise case")
	assert.False(t, ValidCode("AB12C"))
	assert.False(t, ValidCode("AB12CDE"))
	assert.False(t, ValidCode("AB-2CD"))
	assert.False(t, ValidCode("ÄB12CD"))
}

func TestNormalizeCode(t *testing.T) {
	c, err := NormalizeCode("  ab12cd ")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", c)

	_, err = NormalizeCode(strings.Repeat("A", 7))
	assert.ErrorIs(t, err, ErrInvalidSessionCode)
	assert.Equal(t, KindValidation, KindOf(err))
}
