package regex

import "strings"

// metachars must be escaped to be read as literals by Postfix.
const metachars = `()|*+?.[]\`

// unescape maps the byte following a backslash to the byte it denotes.
func unescape(c byte) byte {
	switch c {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case 'a':
		return '\a'
	case '0':
		return 0
	}
	return c
}

// quote renders a literal byte so that Postfix reads it back unchanged.
func quote(b *strings.Builder, c byte) {
	if strings.IndexByte(metachars, c) >= 0 {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}

// Rewrite replaces every [...] character class in pattern with an
// equivalent parenthesized alternation of single literals, so the rest of
// the compiler only sees literals, '.', groups and operators.
func Rewrite(pattern string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch c {
		case '\\':
			if i+1 >= len(pattern) {
				return "", newError(pattern, i, ErrTrailingBackslash)
			}
			b.WriteString(pattern[i : i+2])
			i += 2
		case '[':
			end, set, err := parseClass(pattern, i)
			if err != nil {
				return "", err
			}
			b.WriteByte('(')
			first := true
			for ch := 0; ch < len(set); ch++ {
				if !set[ch] {
					continue
				}
				if !first {
					b.WriteByte('|')
				}
				quote(&b, byte(ch))
				first = false
			}
			b.WriteByte(')')
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// parseClass parses the class starting at pattern[start] == '[' and returns
// the offset just past the closing ']' together with the member set.
func parseClass(pattern string, start int) (int, *[256]bool, error) {
	var set [256]bool
	i := start + 1
	negate := false
	if i < len(pattern) && pattern[i] == '^' {
		negate = true
		i++
	}

	// next decodes one class member at i, honoring escapes.
	next := func(i int) (byte, int, error) {
		if pattern[i] != '\\' {
			return pattern[i], i + 1, nil
		}
		if i+1 >= len(pattern) {
			return 0, 0, newError(pattern, i, ErrTrailingBackslash)
		}
		return unescape(pattern[i+1]), i + 2, nil
	}

	members := 0
	for {
		if i >= len(pattern) {
			return 0, nil, newError(pattern, start, ErrUnterminatedClass)
		}
		if pattern[i] == ']' {
			i++
			break
		}
		lo, j, err := next(i)
		if err != nil {
			return 0, nil, err
		}
		hi := lo
		if j+1 < len(pattern) && pattern[j] == '-' && pattern[j+1] != ']' {
			hi, j, err = next(j + 1)
			if err != nil {
				return 0, nil, err
			}
			if hi < lo {
				return 0, nil, newError(pattern, i, ErrBadRange)
			}
		}
		for c := int(lo); c <= int(hi); c++ {
			set[c] = true
		}
		members++
		i = j
	}

	if members == 0 {
		return 0, nil, newError(pattern, start, ErrEmptyClass)
	}

	if negate {
		var inv [256]bool
		empty := true
		for c := 1; c < 128; c++ {
			inv[c] = !set[c]
			empty = empty && !inv[c]
		}
		if empty {
			return 0, nil, newError(pattern, start, ErrEmptyClass)
		}
		set = inv
	}
	return i, &set, nil
}
