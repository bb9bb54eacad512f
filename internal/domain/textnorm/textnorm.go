// Package textnorm normalizes free-text title names for matching.
//
// The catalog and the telemetry source disagree on casing, punctuation,
// articles and roman numerals, so every comparison in the resolver runs on the
// normalized form produced here: lower-cased, platform prefix and leading
// article stripped, ASCII-folded, whitespace-squeezed, roman numerals up to
// ten converted to digits.
package textnorm

import (
	"strconv"
	"strings"
)

// romanToInt converts a lone roman numeral token (up to ten) to its value.
// Returns -1 for anything else.
func romanToInt(tok string) int {
	switch strings.ToLower(tok) {
	case "i":
		return 1
	case "ii":
		return 2
	case "iii":
		return 3
	case "iiii", "iv":
		return 4
	case "v":
		return 5
	case "vi":
		return 6
	case "vii":
		return 7
	case "viii":
		return 8
	case "ix":
		return 9
	case "x":
		return 10
	}
	return -1
}

// asciiFoldKeepSpace lower-cases and folds a string down to [a-z0-9 ].
// '&' becomes " and "; every other symbol becomes a space.
func asciiFoldKeepSpace(in string) string {
	var out strings.Builder
	out.Grow(len(in))
	for i := 0; i < len(in); i++ {
		c := in[i]
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		switch {
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == ' ':
			out.WriteByte(c)
		case c == '&':
			out.WriteString(" and ")
		default:
			out.WriteByte(' ')
		}
	}
	return out.String()
}

// squeezeSpace collapses runs of spaces and trims the ends.
func squeezeSpace(in string) string {
	var out strings.Builder
	out.Grow(len(in))
	prevSpace := false
	for i := 0; i < len(in); i++ {
		c := in[i]
		if c == ' ' {
			if !prevSpace {
				out.WriteByte(c)
			}
			prevSpace = true
			continue
		}
		out.WriteByte(c)
		prevSpace = false
	}
	return strings.Trim(out.String(), " ")
}

// Tokenize normalizes raw and splits it into comparison tokens.
// A leading "x" glued to the rest of the name (platform prefix, "XHalo") and a
// leading "the " article are stripped before folding.
func Tokenize(raw string) []string {
	s := strings.ToLower(raw)
	if len(s) > 1 && s[0] == 'x' && ((s[1] >= 'a' && s[1] <= 'z') || (s[1] >= '0' && s[1] <= '9')) {
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "the ")
	s = squeezeSpace(asciiFoldKeepSpace(s))
	if s == "" {
		return nil
	}

	parts := strings.Split(s, " ")
	toks := make([]string, 0, len(parts))
	for _, tok := range parts {
		if r := romanToInt(tok); r > 0 {
			tok = strconv.Itoa(r)
		}
		toks = append(toks, tok)
	}
	return toks
}

// NormKey returns the tokens of raw joined without separators. Two names with
// the same NormKey are considered spellings of the same title.
func NormKey(raw string) string {
	toks := Tokenize(raw)
	var out strings.Builder
	out.Grow(len(raw))
	for _, t := range toks {
		out.WriteString(t)
	}
	return out.String()
}

// regionWords are the release-region markers seen in catalog labels and slugs.
var regionWords = map[string]struct{}{
	"ntsc": {}, "pal": {}, "usa": {}, "us": {},
	"japan": {}, "jpn": {}, "germany": {}, "de": {},
	"europe": {}, "eu": {}, "asia": {}, "kor": {},
	"korea": {}, "au": {}, "australia": {},
}

func isRegionWord(tok string) bool {
	t := strings.ToLower(strings.TrimSuffix(tok, ","))
	_, ok := regionWords[t]
	return ok
}

// FamilyKeyFromLabel derives the variant-grouping key from a display name.
// A trailing parenthetical made up entirely of region words is dropped, so
// "Great Game (USA)" and "Great Game (Europe)" share one key.
func FamilyKeyFromLabel(name string) string {
	s := name
	open := strings.LastIndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open >= 0 && end > open && end == len(s)-1 {
		inside := s[open+1 : end]
		toks := strings.FieldsFunc(inside, func(r rune) bool { return r == ' ' || r == ',' })
		allRegion := len(toks) > 0
		for _, t := range toks {
			if !isRegionWord(t) {
				allRegion = false
				break
			}
		}
		if allRegion {
			s = s[:open]
		}
	}
	return NormKey(strings.TrimSpace(s))
}

// regionSuffixes are stripped from slugs before family grouping. Only the
// first matching suffix is removed.
var regionSuffixes = []string{
	"-ntsc", "-pal", "-usa", "-japan", "-jpn", "-germany",
	"-eu", "-europe", "-asia", "-kor", "-korea",
}

// FamilyKeyFromSlug derives the variant-grouping key from a catalog slug.
func FamilyKeyFromSlug(slug string) string {
	s := strings.ToLower(slug)
	for _, suf := range regionSuffixes {
		if len(s) > len(suf) && strings.HasSuffix(s, suf) {
			s = s[:len(s)-len(suf)]
			break
		}
	}
	return NormKey(strings.ReplaceAll(s, "-", " "))
}
