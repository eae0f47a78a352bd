package codec

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"timeplus/internal/marker"
	"timeplus/internal/timecode"
)

const (
	entrySeparator = ", "
	memoSeparator  = " - "
)

// TokenError describes an imported token that was dropped.
type TokenError struct {
	Token string
	Err   error
}

func (e *TokenError) Error() string {
	return "token " + strings.TrimSpace(e.Token) + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error { return e.Err }

// EncodeText renders markers as "H:MM:SS - memo" entries joined by ", ".
func EncodeText(markers []marker.Marker) string {
	var b strings.Builder
	for i, m := range markers {
		if i > 0 {
			b.WriteString(entrySeparator)
		}
		b.WriteString(timecode.Format(m.Time))
		if m.Memo != nil {
			b.WriteString(memoSeparator)
			b.WriteString(escapeMemo(*m.Memo))
		}
	}
	return b.String()
}

// DecodeText parses the text form. Tokens are separated by runs of whitespace
// and commas; a token followed by " - " carries a memo up to the next
// unescaped comma or line break. Tokens whose time does not parse are dropped
// and reported. The result is sorted with unique times, first entry winning.
func DecodeText(input string) ([]marker.Marker, []TokenError) {
	var (
		out     []marker.Marker
		dropped []TokenError
	)

	i := 0
	n := len(input)
	for i < n {
		for i < n {
			r, size := utf8.DecodeRuneInString(input[i:])
			if !isSeparator(r) {
				break
			}
			i += size
		}
		if i >= n {
			break
		}

		start := i
		for i < n {
			r, size := utf8.DecodeRuneInString(input[i:])
			if isSeparator(r) {
				break
			}
			i += size
		}
		token := input[start:i]

		var memo *string
		switch rest := input[i:]; {
		case strings.HasPrefix(rest, memoSeparator):
			text, next := readMemo(input, i+len(memoSeparator))
			memo = &text
			i = next
		case rest == strings.TrimRight(memoSeparator, " "):
			empty := ""
			memo = &empty
			i = n
		}

		t, err := timecode.Parse(token)
		if err != nil {
			dropped = append(dropped, TokenError{Token: token, Err: err})
			continue
		}
		out = append(out, marker.New(t, memo))
	}

	return marker.Normalize(out), dropped
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

func readMemo(input string, i int) (string, int) {
	var b strings.Builder
	n := len(input)
	for i < n {
		c := input[i]
		switch c {
		case ',', '\n', '\r':
			return b.String(), i + 1
		case '\\':
			if i+1 >= n {
				b.WriteByte(c)
				i++
				continue
			}
			switch next := input[i+1]; next {
			case '\\', ',':
				b.WriteByte(next)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), n
}

var memoEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", `\,`,
	"\n", `\n`,
	"\r", `\r`,
)

func escapeMemo(memo string) string {
	return memoEscaper.Replace(memo)
}
