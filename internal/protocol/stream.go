package protocol

import "strings"

// Stream field extraction works on the raw text accumulated from a still-open
// response stream. The text is not valid JSON until the stream closes, so a
// real decoder cannot touch it; these scanners pull individual display fields
// out by prefix instead. They never fail: a field that has not started yet is
// simply reported absent, and a field whose closing quote has not arrived is
// returned as the decoded partial value seen so far.

// ExtractStringField returns the best-effort decoded value of a string field
// in a possibly incomplete JSON document. The second return is false when the
// field's value has not started yet.
func ExtractStringField(text, field string) (string, bool) {
	start, ok := findValueStart(text, field, '"')
	if !ok {
		return "", false
	}
	end, closed := findStringEnd(text, start)
	if closed {
		return decodeEscapes(text[start:end]), true
	}
	return decodeEscapes(text[start:]), true
}

// ExtractArrayField returns the quoted strings contained in an array-valued
// field, even when the closing bracket has not arrived yet. A trailing
// element whose closing quote is still missing is included partially.
// Malformed or absent brackets yield a nil slice.
func ExtractArrayField(text, field string) []string {
	pos, ok := findValueStart(text, field, '[')
	if !ok {
		return nil
	}
	var items []string
	for pos < len(text) {
		switch text[pos] {
		case ']':
			return items
		case '"':
			start := pos + 1
			end, closed := findStringEnd(text, start)
			if !closed {
				if partial := decodeEscapes(text[start:]); partial != "" {
					items = append(items, partial)
				}
				return items
			}
			items = append(items, decodeEscapes(text[start:end]))
			pos = end + 1
		default:
			pos++
		}
	}
	return items
}

// ExtractPartial pulls the display fields out of an in-flight stream.
func ExtractPartial(text string) PartialResponse {
	p := PartialResponse{RawText: text}
	p.Thought, _ = ExtractStringField(text, "thought")
	p.FinalAnswer, _ = ExtractStringField(text, "finalAnswer")
	p.Plan = ExtractArrayField(text, "plan")
	return p
}

// findValueStart locates `"field"` followed by a colon and the given opening
// delimiter, tolerating whitespace, and returns the index just past the
// delimiter. Occurrences of the field name not followed by a colon (for
// example inside another string value) are skipped.
func findValueStart(text, field string, open byte) (int, bool) {
	needle := `"` + field + `"`
	from := 0
	for {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return 0, false
		}
		pos := from + i + len(needle)
		pos = skipSpace(text, pos)
		if pos >= len(text) || text[pos] != ':' {
			from += i + len(needle)
			continue
		}
		pos = skipSpace(text, pos+1)
		if pos >= len(text) || text[pos] != open {
			// Value started but with a different delimiter, or has not
			// arrived yet. Either way this field holds no usable value.
			return 0, false
		}
		return pos + 1, true
	}
}

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// findStringEnd scans from start for the closing unescaped quote. Returns its
// index and true, or len(text) and false when the stream cut off first.
func findStringEnd(text string, start int) (int, bool) {
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++ // skip escaped char (or trailing backslash)
		case '"':
			return i, true
		}
	}
	return len(text), false
}

// decodeEscapes decodes the escape sequences the display fields use. An
// incomplete trailing escape (a lone backslash at the cut point) is dropped.
// Unknown escapes are kept verbatim rather than rejected.
func decodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			break // incomplete escape at the stream cut
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
