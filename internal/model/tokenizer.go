package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	clsToken = "[CLS]"
	sepToken = "[SEP]"
	unkToken = "[UNK]"

	maxWordChars = 100
)

// TokenizedOutput holds the model inputs for one sequence.
type TokenizedOutput struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
}

// WordPieceTokenizer implements the uncased BERT tokenizer: lowercasing, accent
// stripping, punctuation and CJK splitting, then greedy longest-match WordPiece.
type WordPieceTokenizer struct {
	vocab  map[string]int64
	maxLen int
}

// LoadWordPieceTokenizer reads a vocab.txt file with one token per line.
func LoadWordPieceTokenizer(path string, maxLen int) (*WordPieceTokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab: %w", err)
	}
	defer f.Close()
	return NewWordPieceTokenizer(f, maxLen)
}

func NewWordPieceTokenizer(r io.Reader, maxLen int) (*WordPieceTokenizer, error) {
	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(r)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}

	for _, special := range []string{clsToken, sepToken, unkToken} {
		if _, ok := vocab[special]; !ok {
			return nil, fmt.Errorf("vocab is missing %s", special)
		}
	}

	if maxLen < 3 {
		return nil, fmt.Errorf("max sequence length %d is too small", maxLen)
	}

	return &WordPieceTokenizer{vocab: vocab, maxLen: maxLen}, nil
}

// Encode tokenizes text into [CLS] tokens... [SEP], truncated to the max sequence length.
func (t *WordPieceTokenizer) Encode(text string) TokenizedOutput {
	pieces := t.Tokenize(text)
	if len(pieces) > t.maxLen-2 {
		pieces = pieces[:t.maxLen-2]
	}

	ids := make([]int64, 0, len(pieces)+2)
	ids = append(ids, t.vocab[clsToken])
	for _, p := range pieces {
		ids = append(ids, t.vocab[p])
	}
	ids = append(ids, t.vocab[sepToken])

	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}

	return TokenizedOutput{
		InputIDs:      ids,
		AttentionMask: mask,
		TokenTypeIDs:  make([]int64, len(ids)),
	}
}

// Tokenize returns the WordPiece tokens for text, without special tokens.
func (t *WordPieceTokenizer) Tokenize(text string) []string {
	var out []string
	for _, word := range basicTokenize(text) {
		out = append(out, t.wordPiece(word)...)
	}
	return out
}

func (t *WordPieceTokenizer) wordPiece(word string) []string {
	chars := []rune(word)
	if len(chars) > maxWordChars {
		return []string{unkToken}
	}

	var pieces []string
	start := 0
	for start < len(chars) {
		end := len(chars)
		cur := ""
		for start < end {
			sub := string(chars[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if _, ok := t.vocab[sub]; ok {
				cur = sub
				break
			}
			end--
		}
		if cur == "" {
			return []string{unkToken}
		}
		pieces = append(pieces, cur)
		start = end
	}
	return pieces
}

func basicTokenize(text string) []string {
	var sb strings.Builder
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
			continue
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		case isCJK(r):
			sb.WriteRune(' ')
			sb.WriteRune(r)
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}

	// transformers carry state, so each call builds its own
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

	var tokens []string
	for _, word := range strings.Fields(sb.String()) {
		word = strings.ToLower(word)
		if stripped, _, err := transform.String(stripAccents, word); err == nil {
			word = stripped
		}
		tokens = append(tokens, splitOnPunct(word)...)
	}
	return tokens
}

func splitOnPunct(word string) []string {
	var out []string
	var cur []rune
	for _, r := range word {
		if isPunct(r) {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = cur[:0]
			}
			out = append(out, string(r))
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r) || unicode.In(r, unicode.Cf)
}

// isPunct treats all non-alphanumeric ASCII as punctuation, as BERT does.
func isPunct(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
