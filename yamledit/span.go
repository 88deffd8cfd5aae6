package yamledit

import (
	"strings"
	"unicode/utf8"
)

// byteOffset converts a character column to a byte offset in line,
// clamped to the line length.
func byteOffset(line string, col int) int {
	off := 0
	for i := 0; i < col && off < len(line); i++ {
		_, size := utf8.DecodeRuneInString(line[off:])
		off += size
	}
	return off
}

// scalarEnd finds where the scalar token starting at lines[line][start:]
// ends, as a line index and an exclusive byte offset into that line.
// keyCol is the column of the owning key: continuation lines of plain and
// block scalars are indented past it.
func scalarEnd(lines []string, line, start int, style ScalarStyle, keyCol int) (int, int) {
	switch style {
	case SingleQuoted:
		return quotedEnd(lines, line, start, '\'')
	case DoubleQuoted:
		return quotedEnd(lines, line, start, '"')
	case Literal, Folded:
		return blockEnd(lines, line, start, keyCol)
	default:
		return plainEnd(lines, line, start, keyCol)
	}
}

func quotedEnd(lines []string, line, start int, quote byte) (int, int) {
	pos := start + 1
	for l := line; l < len(lines); l++ {
		s := lines[l]
		for i := pos; i < len(s); i++ {
			switch {
			case quote == '"' && s[i] == '\\':
				i++
			case s[i] == quote && quote == '\'' && i+1 < len(s) && s[i+1] == '\'':
				i++
			case s[i] == quote:
				return l, i + 1
			}
		}
		pos = 0
	}
	// unterminated; the parser would have rejected this
	return line, len(trimCR(lines[line]))
}

func plainEnd(lines []string, line, start, keyCol int) (int, int) {
	end, commented := plainLineEnd(lines[line], start)
	if commented {
		return line, end
	}
	last, lastEnd := line, end
	for l := line + 1; l < len(lines); l++ {
		s := lines[l]
		if strings.TrimSpace(s) == "" {
			continue
		}
		ind := leadingSpaces([]byte(s))
		if ind <= keyCol || s[ind] == '#' {
			break
		}
		e, c := plainLineEnd(s, ind)
		last, lastEnd = l, e
		if c {
			break
		}
	}
	return last, lastEnd
}

// plainLineEnd returns the end of plain scalar text on one line, before any
// comment and trailing whitespace, and whether a comment was found.
func plainLineEnd(s string, from int) (int, bool) {
	end := len(s)
	commented := false
	for i := from + 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			end, commented = i, true
			break
		}
	}
	for end > from && isSpace(s[end-1]) {
		end--
	}
	return end, commented
}

func blockEnd(lines []string, line, start, keyCol int) (int, int) {
	headerEnd, _ := plainLineEnd(lines[line], start)
	last, lastEnd := line, headerEnd
	for l := line + 1; l < len(lines); l++ {
		s := lines[l]
		if strings.TrimSpace(s) == "" {
			continue
		}
		if leadingSpaces([]byte(s)) <= keyCol {
			break
		}
		last, lastEnd = l, len(trimCR(s))
	}
	return last, lastEnd
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}
