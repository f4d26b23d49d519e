package matcher

import "unicode/utf8"

// Glob matches a whole string against a wildcard pattern where '*' matches
// any run of runes (including none) and '?' matches exactly one rune.
// The zero value and "*" match everything.
type Glob struct {
	pattern []rune
	any     bool
}

// CompileGlob prepares a wildcard pattern.
func CompileGlob(pattern string) Glob {
	if pattern == "" || pattern == "*" {
		return Glob{any: true}
	}
	return Glob{pattern: []rune(pattern)}
}

// MatchesAll reports whether the glob accepts every string.
func (g Glob) MatchesAll() bool {
	return g.any || len(g.pattern) == 0
}

// Match reports whether s matches the pattern.
func (g Glob) Match(s string) bool {
	if g.MatchesAll() {
		return true
	}
	p := g.pattern
	pi, si := 0, 0
	// Position after the last '*' and the input offset it was tried at.
	star, mark := -1, 0
	for si < len(s) {
		r, size := utf8.DecodeRuneInString(s[si:])
		switch {
		case pi < len(p) && p[pi] == '*':
			star = pi
			mark = si
			pi++
		case pi < len(p) && (p[pi] == '?' || p[pi] == r):
			pi++
			si += size
		case star >= 0:
			// Let the last star absorb one more rune.
			_, skip := utf8.DecodeRuneInString(s[mark:])
			mark += skip
			si = mark
			pi = star + 1
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
