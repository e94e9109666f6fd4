// Package testhelper carries small fixtures shared by the grammar tests.
package testhelper

import (
	"strings"
	"testing"
)

// TrimIndent makes inline raw-string fixtures readable: the first line is
// dropped, the indentation of the following line is stripped from every
// line, and each remaining leading tab becomes four spaces. That lets tests
// embed indentation sensitive documents without fighting the test source's
// own indentation.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")
	if len(lines) < 2 {
		return src
	}

	body := lines[1:]

	indent := body[0][:len(body[0])-len(strings.TrimLeft(body[0], " \t"))]

	for i, line := range body {
		line = strings.TrimPrefix(line, indent)

		rest := strings.TrimLeft(line, "\t")
		body[i] = strings.Repeat("    ", len(line)-len(rest)) + rest
	}

	return strings.Join(body, "\n")
}
