package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Truncate returns s in NFC form cut to at most limit runes. Combining
// sequences are composed first so accented letters count once.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = norm.NFC.String(s)
	count := 0
	for i := range s {
		if count == limit {
			return strings.TrimRightFunc(s[:i], isSpace)
		}
		count++
	}
	return s
}

// TruncateWithEllipsis truncates s to limit runes, replacing the tail with
// "..." when anything was removed.
func TruncateWithEllipsis(s string, limit int) string {
	s = norm.NFC.String(s)
	if RuneLen(s) <= limit {
		return s
	}
	if limit <= 3 {
		return Truncate(s, limit)
	}
	return Truncate(s, limit-3) + "..."
}

// RuneLen counts runes of s after NFC normalization.
func RuneLen(s string) int {
	return len([]rune(norm.NFC.String(s)))
}

// StripQuotes trims whitespace and one layer of matching surrounding quotes.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"`", "`"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
