package extractor

import "strings"

// BodySkipPrefix is the length, in characters, of the marker every table body
// text starts with ("Counters List" plus its separator). It is dropped before
// chunking.
const BodySkipPrefix = 14

// ChunkBodyText splits the newline-joined text of one table body into row
// fragments. Every second newline closes a fragment; the odd ones are kept
// inside it, so "label\nvalue" pairs stay together. A trailing fragment without
// a closing newline is still emitted.
func ChunkBodyText(text string) []string {
	runes := []rune(text)
	if len(runes) <= BodySkipPrefix {
		return []string{}
	}

	chunks := []string{}
	var buf strings.Builder
	newlines := 0
	for _, r := range runes[BodySkipPrefix:] {
		if r != '\n' {
			buf.WriteRune(r)
			continue
		}
		newlines++
		if newlines%2 == 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		} else {
			buf.WriteRune('\n')
		}
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}
