// Package genutil contains the naming transforms and comment helpers shared
// by the tdlgen target backends.
package genutil

import (
	"strings"
	"unicode"

	"github.com/client9/misspell"
	"github.com/kenshaw/snaker"
)

// Comment consts.
const (
	CommentWidth  = 80
	CommentPrefix = `// `
)

// Capitalize upper cases the first character of in, leaving the rest
// untouched. Identifiers are never empty; empty input is a caller bug.
func Capitalize(in string) string {
	r := []rune(in)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Decapitalize lower cases the first character of in, leaving the rest
// untouched.
func Decapitalize(in string) string {
	r := []rune(in)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Lowercase folds every character of in to lower case.
func Lowercase(in string) string {
	return strings.ToLower(in)
}

// Underscore transforms a camel case identifier to an equivalent one
// separated by underscores.
//
//	aMultiWord -> a_multi_word
//	someName   -> some_name
//	CamelCase  -> camel_case
//	name       -> name
//	Name       -> name
//
// Each uppercase character gets its own separator, including consecutive
// ones; generated output depends on this staying bit compatible.
func Underscore(in string) string {
	var b strings.Builder
	for i, r := range in {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsUpper(r):
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Camelcase transforms an identifier with words separated by underscores to a
// camel case equivalent.
//
//	a_multi_word -> aMultiWord
//	some_name    -> someName
//	name         -> name
//
// A trailing underscore with nothing after it is dropped.
func Camelcase(in string) string {
	var b strings.Builder
	var underscore bool
	for _, r := range in {
		if r == '_' {
			underscore = true
			continue
		}
		if underscore {
			b.WriteRune(unicode.ToUpper(r))
			underscore = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func init() {
	misspellReplacer.Compile()
}

// misspellReplacer fixes common misspellings in declaration comments.
var misspellReplacer = misspell.New()

// CleanDesc cleans a declaration comment for emission, collapsing line breaks
// and fixing common misspellings.
func CleanDesc(s string) string {
	s, _ = misspellReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// FormatComment formats a declaration comment as a Go style doc comment,
// prefixed with newstr (usually the declared name plus a space). The first
// word is lower cased unless it is a known initialism.
func FormatComment(s, newstr string) string {
	s = strings.TrimSpace(CleanDesc(s))

	l := len(s)
	if newstr != "" && l > 0 {
		if i := strings.IndexFunc(s, unicode.IsSpace); i != -1 {
			firstWord, remaining := s[:i], s[i:]
			if snaker.IsInitialism(firstWord) {
				s = strings.ToUpper(firstWord)
			} else {
				s = strings.ToLower(firstWord[:1]) + firstWord[1:]
			}
			s += remaining
		}
	}
	s = newstr + strings.TrimSuffix(s, ".")
	if l < 1 {
		s += "[no description]"
	}
	s += "."

	return Wrap(s, CommentWidth-len(CommentPrefix), CommentPrefix)
}

// Wrap wraps a line of text to the specified width, adding the prefix to each
// wrapped line.
func Wrap(s string, width int, prefix string) string {
	words := strings.Fields(strings.TrimSpace(s))
	if len(words) == 0 {
		return s
	}

	wrapped := prefix + words[0]
	spaceLeft := width - len(wrapped)
	for _, word := range words[1:] {
		if len(word)+1 > spaceLeft {
			wrapped += "\n" + prefix + word
			spaceLeft = width - len(word)
		} else {
			wrapped += " " + word
			spaceLeft -= 1 + len(word)
		}
	}

	return wrapped
}
