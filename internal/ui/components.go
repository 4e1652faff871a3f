package ui

import "strings"

// indentBlock prefixes every line of a multi-line block, keeping
// trailing empty lines intact so panel heights stay stable.
func indentBlock(block, prefix string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
