package data

import (
	"strings"
	"unicode/utf8"
)

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// TruncateRunes cuts s to at most max characters without splitting a UTF-8 sequence.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// CharCount reports the length of s in characters.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// SplitChunks breaks text into pieces of at most max characters, cutting at
// whitespace where one is available.
func SplitChunks(text string, max int) []string {
	var chunks []string
	for CharCount(text) > max {
		cut := byteOffset(text, max)
		if !strings.ContainsRune(" \n\t", rune(text[cut])) {
			if ws := strings.LastIndexAny(text[:cut], " \n\t"); ws > 0 {
				cut = ws
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], " \n\t")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func byteOffset(s string, runes int) int {
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}
