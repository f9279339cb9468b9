// Package llmjson turns raw model output into JSON the rest of the
// pipeline can decode. Models wrap JSON in code fences and prose, leave
// trailing commas behind and get cut off by token limits; this package
// absorbs all of that.
package llmjson

import "strings"

const bom = "\uFEFF"

// Sanitize strips a byte-order mark and code fences, extracts the first
// balanced JSON value and removes trailing commas. Whitespace-only input
// yields "".
func Sanitize(raw string) string {
	s := stripFences(strings.TrimSpace(strings.TrimPrefix(raw, bom)))
	if s == "" {
		return ""
	}

	if v, ok := ExtractBalanced(s); ok {
		s = v
	} else if i, j := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); i >= 0 && j > i {
		s = s[i : j+1]
	}
	return RemoveTrailingCommas(s)
}

// stripFences removes a leading ```lang line and a trailing ``` marker.
func stripFences(s string) string {
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimLeft(strings.TrimPrefix(s, "```"), "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractBalanced returns the first JSON object or array in s, found by
// depth-tracking from the first '{' or '[' while skipping string literals.
func ExtractBalanced(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}
	end := matchClose(s, start)
	if end < 0 {
		return "", false
	}
	return s[start : end+1], true
}

// matchClose returns the index of the bracket closing the one at s[start],
// or -1 if the value never closes.
func matchClose(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// RemoveTrailingCommas drops commas that directly precede a closing
// brace or bracket, ignoring whitespace between them. Commas inside
// string literals are kept.
func RemoveTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := skipSpace(s, i+1)
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
