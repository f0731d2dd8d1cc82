package utils

import (
	"strings"
	"unicode"
)

// MaxSlugLength keeps generated asset ids well inside the upload provider's
// public id limit.
const MaxSlugLength = 60

var slugReplacer = strings.NewReplacer("'", "", "’", "", "&", " and ", "+", " plus ")

// Slugify lowercases input and joins its ASCII letter and digit runs with
// single dashes, e.g. "Oral & Maxillofacial Surgery" becomes
// "oral-and-maxillofacial-surgery".
func Slugify(input string) string {
	s := slugReplacer.Replace(strings.ToLower(strings.TrimSpace(input)))

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}

	out := b.String()
	if len(out) > MaxSlugLength {
		out = out[:MaxSlugLength]
		if i := strings.LastIndexByte(out, '-'); i > 0 {
			out = out[:i]
		}
	}
	return out
}
