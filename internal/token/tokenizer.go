// Package token wraps the external tokenizer used for token-based chunk
// sizing. Counting is the only operation the chunking engine requires;
// encode/decode exist so the measurement layer can split at exact token
// boundaries.
package token

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used when none is configured.
// cl100k_base matches GPT-4-family and most modern embedding models.
const DefaultEncoding = "cl100k_base"

// charsPerToken is the deterministic fallback ratio used when the real
// tokenizer is unavailable or errors: roughly 4 characters per token for
// English text.
const charsPerToken = 4

// Tokenizer is the narrow contract the chunking engine consumes.
// Decode(Encode(x)) must produce text token-equivalent to x, though not
// necessarily byte-identical if the tokenizer is lossy at whitespace.
type Tokenizer interface {
	Count(text string) (int, error)
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// TikToken is a Tokenizer backed by a tiktoken BPE encoding.
type TikToken struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// NewTikToken loads the named tiktoken encoding.
func NewTikToken(encoding string) (*TikToken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &TikToken{enc: enc, encoding: encoding}, nil
}

// Encoding returns the encoding name this tokenizer was built with.
func (t *TikToken) Encoding() string {
	return t.encoding
}

func (t *TikToken) Count(text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

func (t *TikToken) Encode(text string) ([]int, error) {
	if text == "" {
		return nil, nil
	}
	return t.enc.Encode(text, nil, nil), nil
}

func (t *TikToken) Decode(ids []int) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	return t.enc.Decode(ids), nil
}

// EstimateTokens converts a character count to an approximate token count
// using the fixed fallback ratio. Non-empty text always estimates to at
// least one token.
func EstimateTokens(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	n := charCount / charsPerToken
	if n < 1 {
		n = 1
	}
	return n
}

// ApproxChars is the inverse of EstimateTokens: the character budget that
// approximates the given token count.
func ApproxChars(tokenCount int) int {
	if tokenCount <= 0 {
		return 0
	}
	return tokenCount * charsPerToken
}
