package keypad

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// Alphabet is the set of characters offered on the keypad
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()"

// TokenKind distinguishes characters from control keys
type TokenKind int

const (
	KindCharacter TokenKind = iota
	KindBackspace
	KindShuffle
)

// Token is one key of a layout
type Token struct {
	Kind TokenKind
	Char rune
}

// Backspace and Shuffle are the control keys appended to every layout
var (
	Backspace = Token{Kind: KindBackspace}
	Shuffle   = Token{Kind: KindShuffle}
)

// Char returns the token for a character key
func Char(r rune) Token {
	return Token{Kind: KindCharacter, Char: r}
}

// Label is the text shown on the key
func (t Token) Label() string {
	switch t.Kind {
	case KindBackspace:
		return "Backspace"
	case KindShuffle:
		return "Shuffle"
	default:
		return string(t.Char)
	}
}

// Layout is an ordered set of keys
type Layout []Token

// Typeable reports whether every character of s is on the keypad
func Typeable(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

// GenerateLayout returns a fresh permutation of Alphabet with the controls appended
func GenerateLayout(rng *rand.Rand) Layout {
	chars := []rune(Alphabet)
	for i := len(chars) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}

	layout := make(Layout, 0, len(chars)+2)
	for _, r := range chars {
		layout = append(layout, Char(r))
	}
	return append(layout, Backspace, Shuffle)
}

// Characters returns the character keys in layout order
func (l Layout) Characters() string {
	var b strings.Builder
	for _, t := range l {
		if t.Kind == KindCharacter {
			b.WriteRune(t.Char)
		}
	}
	return b.String()
}

// Format renders the layout as a numbered grid with cols keys per row
func (l Layout) Format(cols int) string {
	if cols <= 0 {
		cols = 8
	}
	var b strings.Builder
	for i, t := range l {
		fmt.Fprintf(&b, "%2d:%-9s", i, t.Label())
		if (i+1)%cols == 0 || i == len(l)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// Generator produces layouts from one random source. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator uses rng, or a ChaCha8 source seeded from crypto/rand when nil
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		var seed [32]byte
		crand.Read(seed[:])
		rng = rand.New(rand.NewChaCha8(seed))
	}
	return &Generator{rng: rng}
}

// Generate returns a new layout
func (g *Generator) Generate() Layout {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GenerateLayout(g.rng)
}
