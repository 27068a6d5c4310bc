package parser

import (
	"strings"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
)

// PositionAt converts a byte offset in content to a zero-based line/character
// position. The character component counts UTF-16 code units, matching the
// position encoding editors negotiate by default.
func PositionAt(content string, offset int) types.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		offset = len(content)
	}

	prefix := content[:offset]
	line := strings.Count(prefix, "\n")
	lastNL := strings.LastIndexByte(prefix, '\n')

	return types.Position{
		Line:      line,
		Character: utf16Len(prefix[lastNL+1:]),
	}
}

// utf16Len returns the number of UTF-16 code units needed to encode s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
