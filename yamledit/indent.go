package yamledit

import (
	"bytes"
)

// detectIndent returns the indent unit of a block document: the GCD of all
// non-zero leading-space counts of content lines, 2 when there is no
// evidence or the result is implausible.
func detectIndent(b []byte) int {
	indents := []int{}
	for _, ln := range bytes.Split(b, []byte("\n")) {
		if isBlankOrComment(ln) {
			continue
		}
		if n := leadingSpaces(ln); n > 0 {
			indents = append(indents, n)
		}
	}

	if len(indents) == 0 {
		return 2
	}

	result := indents[0]
	for i := 1; i < len(indents); i++ {
		result = gcd(result, indents[i])
		if result == 1 {
			break
		}
	}

	if result > 0 && result <= 8 {
		return result
	}
	return 2
}

func isBlankOrComment(ln []byte) bool {
	t := bytes.TrimSpace(ln)
	return len(t) == 0 || t[0] == '#'
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func leadingSpaces(line []byte) int {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
