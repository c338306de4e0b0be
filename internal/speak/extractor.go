// Package speak extracts <speak>...</speak> blocks from an incrementally
// growing text stream, handing each completed block off for TTS synthesis
// as soon as its closing tag arrives.
package speak

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`(?s)<speak>(.*?)</speak>`)

// Extractor buffers text_delta chunks and yields completed <speak> blocks.
// It never rescans text it has already consumed, so the buffer stays
// bounded to whatever hasn't matched yet.
type Extractor struct {
	buf strings.Builder
}

// Feed appends delta to the internal buffer and returns the text of every
// <speak>...</speak> block that is now complete, in order. Empty blocks
// (whitespace-only) are dropped.
func (e *Extractor) Feed(delta string) []string {
	e.buf.WriteString(delta)
	remaining := e.buf.String()

	var found []string
	for {
		loc := tagPattern.FindStringSubmatchIndex(remaining)
		if loc == nil {
			break
		}
		text := strings.TrimSpace(remaining[loc[2]:loc[3]])
		if text != "" {
			found = append(found, text)
		}
		remaining = remaining[loc[1]:]
	}

	e.buf.Reset()
	e.buf.WriteString(remaining)
	return found
}

// StripTags removes the literal <speak> and </speak> markers from text so
// it can be shown to the user without the tag noise, leaving the spoken
// content itself in place.
func StripTags(text string) string {
	text = strings.ReplaceAll(text, "<speak>", "")
	text = strings.ReplaceAll(text, "</speak>", "")
	return text
}
