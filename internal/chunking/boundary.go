package chunking

import "strings"

// delimiterGroups orders break candidates from strongest to weakest semantic
// break: paragraph break, sentence end, line break, clause punctuation.
var delimiterGroups = [][]string{
	{"\n\n"},
	{". ", "! ", "? "},
	{"\n"},
	{"; "},
}

// FindBoundary returns the cut position just after the best natural break in
// text[start:end]. Delimiter types are scanned in priority order: the
// rightmost occurrence of the first type present anywhere in the window wins,
// even when a weaker delimiter sits closer to the window's end. With no
// delimiter in the window, the window's end is returned unchanged (hard cut).
func FindBoundary(text string, start, end int) int {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return end
	}
	window := text[start:end]
	for _, group := range delimiterGroups {
		best := -1
		for _, delim := range group {
			if pos := strings.LastIndex(window, delim); pos >= 0 {
				if cut := start + pos + len(delim); cut > best {
					best = cut
				}
			}
		}
		if best > start {
			return best
		}
	}
	return end
}
