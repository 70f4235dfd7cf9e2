package keypad

import (
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedRunes(s string) string {
	r := []rune(s)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return string(r)
}

func TestGenerateLayout_IsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 50; i++ {
		layout := GenerateLayout(rng)
		require.Len(t, layout, len(Alphabet)+2)

		assert.Equal(t, sortedRunes(Alphabet), sortedRunes(layout.Characters()))
		assert.Equal(t, Backspace, layout[len(layout)-2])
		assert.Equal(t, Shuffle, layout[len(layout)-1])
	}
}

func TestGenerateLayout_Varies(t *testing.T) {
	gen := NewGenerator(nil)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[gen.Generate().Characters()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerateLayout_Deterministic(t *testing.T) {
	a := GenerateLayout(rand.New(rand.NewPCG(7, 7)))
	b := GenerateLayout(rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
}

func TestTokenLabel(t *testing.T) {
	assert.Equal(t, "a", Char('a').Label())
	assert.Equal(t, "Backspace", Backspace.Label())
	assert.Equal(t, "Shuffle", Shuffle.Label())
}

func TestLayoutFormat(t *testing.T) {
	layout := Layout{Char('a'), Char('b'), Backspace}
	out := layout.Format(2)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " 0:a")
	assert.Contains(t, lines[0], " 1:b")
	assert.Contains(t, lines[1], " 2:Backspace")
}

func TestTypeable(t *testing.T) {
	assert.True(t, Typeable("p@ssw0rd123"))
	assert.True(t, Typeable(""))
	assert.False(t, Typeable("P@ssw0rd123"))
	assert.False(t, Typeable("pass word"))
}
