// Package language folds Spanish command text into the canonical form used by
// every matcher in dictado and resolves the date expressions found in it.
package language

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// newAccentFolder returns a transformer that strips combining marks from every
// rune except ñ. Transformers carry state, so callers get a fresh one.
func newAccentFolder() transform.Transformer {
	return runes.If(
		runes.Predicate(func(r rune) bool { return r != 'ñ' }),
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		nil,
	)
}

// FoldRune lower-cases r and strips its accent. The result is always a single
// rune, which keeps folded text rune-aligned with the original.
func FoldRune(r rune) rune {
	lower := unicode.ToLower(r)
	if lower < utf8.RuneSelf || lower == 'ñ' {
		return lower
	}
	out, _, err := transform.String(newAccentFolder(), string(lower))
	if err != nil || utf8.RuneCountInString(out) != 1 {
		return lower
	}
	folded, _ := utf8.DecodeRuneInString(out)
	return folded
}

// Fold lower-cases text and strips accents rune for rune.
func Fold(text string) string {
	return strings.Map(FoldRune, text)
}

// Normalize returns the canonical form of an utterance: folded, without
// inverted punctuation, whitespace collapsed and trailing ?, ! or . removed.
// Normalize is idempotent.
func Normalize(text string) string {
	folded := strings.Map(func(r rune) rune {
		if r == '¿' || r == '¡' {
			return -1
		}
		return FoldRune(r)
	}, text)
	folded = strings.Join(strings.Fields(folded), " ")
	return strings.TrimRight(folded, "?!. ")
}

// Aligned pairs a raw utterance with its folded form so that a match found on
// the folded text can be sliced back out of the raw text with its original
// casing and accents.
type Aligned struct {
	Raw    string
	Folded string
	// offsets[i] is the raw byte offset of the rune at folded byte offset i.
	offsets []int
}

// Align folds raw while recording the byte mapping between both forms.
func Align(raw string) Aligned {
	var b strings.Builder
	b.Grow(len(raw))
	offsets := make([]int, 0, len(raw)+1)
	for pos, r := range raw {
		if r == utf8.RuneError {
			r = ' '
		}
		n, _ := b.WriteRune(FoldRune(r))
		for i := 0; i < n; i++ {
			offsets = append(offsets, pos)
		}
	}
	offsets = append(offsets, len(raw))
	return Aligned{Raw: raw, Folded: b.String(), offsets: offsets}
}

// Slice returns the raw text spanning folded byte offsets [start, end).
func (a Aligned) Slice(start, end int) string {
	if start < 0 || end > len(a.Folded) || start >= end {
		return ""
	}
	return a.Raw[a.offsets[start]:a.offsets[end]]
}

// Blank returns a copy of a with folded bytes [start, end) and the raw text
// they came from replaced by spaces. Offsets stay valid.
func (a Aligned) Blank(start, end int) Aligned {
	if start < 0 || end > len(a.Folded) || start >= end {
		return a
	}
	rawStart, rawEnd := a.offsets[start], a.offsets[end]
	return Aligned{
		Raw:     a.Raw[:rawStart] + strings.Repeat(" ", rawEnd-rawStart) + a.Raw[rawEnd:],
		Folded:  a.Folded[:start] + strings.Repeat(" ", end-start) + a.Folded[end:],
		offsets: a.offsets,
	}
}

var stopwords = map[string]bool{
	"a": true, "al": true, "con": true, "de": true, "del": true, "el": true,
	"en": true, "la": true, "las": true, "lo": true, "los": true, "mi": true,
	"mis": true, "o": true, "para": true, "por": true, "que": true, "se": true,
	"su": true, "un": true, "una": true, "unos": true, "unas": true, "y": true,
}

// IsStopword reports whether a normalized token carries no meaning on its own.
func IsStopword(token string) bool {
	return stopwords[token]
}

// Tokens splits normalized text into letter/digit words.
func Tokens(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContentTokens returns Tokens without stopwords.
func ContentTokens(text string) []string {
	var out []string
	for _, tok := range Tokens(text) {
		if !IsStopword(tok) {
			out = append(out, tok)
		}
	}
	return out
}
