package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"Firebase", "Firebaze", 1},
		{"Firebase", "Firebaes", 2},
		{"héllo", "hello", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestDistance_TriangleInequality(t *testing.T) {
	words := []string{"firebase", "firebaze", "fire", "base", "", "database"}
	for _, a := range words {
		for _, b := range words {
			for _, c := range words {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c))
			}
		}
	}
}

func TestMatches_Fuzzy(t *testing.T) {
	tests := []struct {
		name  string
		term  string
		value string
		want  bool
	}{
		{"one substitution", "Firebase", "Firebaze", true},
		{"transposition is two edits", "Firebase", "Firebaes", true},
		{"two substitutions", "Firebase", "Fyrebaze", true},
		{"three edits", "Firebase", "Fyrebazr", false},
		{"typo inside sentence", "Firebase", "I love Firbase a lot", true},
		{"term longer than field", "firebase", "Firebas", true},
		{"term longer than field too far", "hello", "help", false},
		{"window match", "hello", "hxllo world", true},
		{"exact substring", "base", "Firebase", true},
		{"no match", "zzzzz", "John Doe", false},
		{"empty field", "abcdefgh", "", false},
		{"short field within tolerance", "abcdefgh", "abcdef", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.term, tt.value, false, true, 4))
		})
	}
}

func TestMatches_TransposedNameNeedsLowerTolerance(t *testing.T) {
	assert.False(t, Matches("jhon", "John Doe", false, true, 4))
	assert.True(t, Matches("jhon", "John Doe", false, true, 2))
	assert.False(t, Matches("jhon", "Jane Roe", false, true, 2))
	assert.True(t, Matches("jahn", "John Doe", false, true, 4))
	assert.False(t, Matches("jahn", "Jane Roe", false, true, 4))
}

func TestMatches_Exact(t *testing.T) {
	assert.True(t, Matches("doe", "John Doe", false, false, 4))
	assert.False(t, Matches("doe", "John Doe", true, false, 4))
	assert.True(t, Matches("Doe", "John Doe", true, false, 4))
	assert.False(t, Matches("Firebaze", "Firebase", false, false, 4))
}

func TestMatches_ExactSubstringSubsumption(t *testing.T) {
	pairs := [][2]string{{"John", "John Doe"}, {"oh", "John"}, {"Doe", "John Doe"}, {"x", "xyz"}}
	for _, p := range pairs {
		for _, fuzzy := range []bool{false, true} {
			for _, cs := range []bool{false, true} {
				assert.True(t, Matches(p[0], p[1], cs, fuzzy, 4), "%q in %q fuzzy=%v cs=%v", p[0], p[1], fuzzy, cs)
			}
		}
	}
}

func TestMatches_ShortTermsAreExact(t *testing.T) {
	values := []string{"cat", "cut", "dog", "concatenate", "Cat", ""}
	for _, term := range []string{"cat", "ca", "c", "cot"} {
		for _, v := range values {
			for _, cs := range []bool{false, true} {
				exact := Matches(term, v, cs, false, 1)
				fuzzy := Matches(term, v, cs, true, 1)
				assert.Equal(t, exact, fuzzy, "term %q value %q cs=%v", term, v, cs)
			}
		}
	}
}

func TestMatches_CaseSensitiveFuzzy(t *testing.T) {
	assert.False(t, Matches("FIREBASE", "firebase", true, true, 4))
	assert.True(t, Matches("FIREBASE", "firebase", false, true, 4))
}

func TestPolicy_ToleranceBelowOne(t *testing.T) {
	p := Policy{Fuzzy: true, TypoTolerance: 0}
	// tolerance 1 allows one edit per rune
	assert.True(t, p.Matches("abcd", "wxyz"))
}

func TestPolicy_Deterministic(t *testing.T) {
	p := Policy{Fuzzy: true, TypoTolerance: 3}
	first := p.Matches("searching", "serching for things")
	for range 10 {
		assert.Equal(t, first, p.Matches("searching", "serching for things"))
	}
}
