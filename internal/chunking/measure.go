package chunking

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/BrainDriveAI/document-processing-service/internal/token"
)

// boundaryWindow is how far back from a size limit the boundary search looks
// for a natural break.
const boundaryWindow = 100

// SizeMeasure turns text into a scalar size and splits text at exact size
// boundaries. Implementations must be deterministic and must never return a
// degenerate empty piece for non-empty input.
type SizeMeasure interface {
	Unit() string
	Size(text string) int
	SplitBySize(text string, maxSize, overlap int) ([]string, error)
}

// CharMeasure sizes text by byte length.
type CharMeasure struct{}

func (CharMeasure) Unit() string { return "characters" }

func (CharMeasure) Size(text string) int { return len(text) }

// SplitBySize slides a window of maxSize over the text, preferring a natural
// boundary within the trailing search window over a hard cut.
func (CharMeasure) SplitBySize(text string, maxSize, overlap int) ([]string, error) {
	if err := checkSplitArgs(maxSize, overlap); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if len(text) <= maxSize {
		return []string{text}, nil
	}

	var pieces []string
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end >= len(text) {
			end = len(text)
		} else {
			ws := end - boundaryWindow
			if ws < start {
				ws = start
			}
			end = alignRune(text, FindBoundary(text, ws, end))
		}
		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			pieces = append(pieces, piece)
		}
		if end == len(text) {
			break
		}
		// Advance from the actual cut so no text is skipped. If the overlap
		// would swallow the whole piece, move on without overlap.
		next := alignRune(text, end-overlap)
		if next <= start {
			next = end
		}
		start = next
	}
	return pieces, nil
}

// TokenMeasure sizes text by tokenizer count. Tokenizer failures degrade to
// the fixed character-ratio estimate; the degradation is logged, never silent.
type TokenMeasure struct {
	tok token.Tokenizer
	log *slog.Logger
}

func NewTokenMeasure(tok token.Tokenizer, log *slog.Logger) *TokenMeasure {
	if log == nil {
		log = slog.Default()
	}
	if tok == nil {
		tok = noTokenizer{}
	}
	return &TokenMeasure{tok: tok, log: log}
}

// noTokenizer stands in when no tokenizer was configured, forcing every
// measurement through the character-estimate fallback.
type noTokenizer struct{}

func (noTokenizer) Count(string) (int, error) { return 0, fmt.Errorf("no tokenizer configured") }
func (noTokenizer) Encode(string) ([]int, error) { return nil, fmt.Errorf("no tokenizer configured") }
func (noTokenizer) Decode([]int) (string, error) { return "", fmt.Errorf("no tokenizer configured") }

func (m *TokenMeasure) Unit() string { return "tokens" }

func (m *TokenMeasure) Size(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	n, err := m.tok.Count(text)
	if err != nil {
		m.log.Warn("token count failed, falling back to character estimate", "error", err)
		return token.EstimateTokens(len(text))
	}
	return n
}

// SplitBySize splits text into pieces of at most maxSize tokens. Sentences
// are packed first for semantic boundaries; a sentence that alone exceeds the
// limit is cut at exact token boundaries via encode/decode.
func (m *TokenMeasure) SplitBySize(text string, maxSize, overlap int) ([]string, error) {
	if err := checkSplitArgs(maxSize, overlap); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if m.Size(text) <= maxSize {
		return []string{text}, nil
	}

	var pieces []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) > 0 {
			if joined := strings.TrimSpace(strings.Join(current, " ")); joined != "" {
				pieces = append(pieces, joined)
			}
		}
	}

	for _, sentence := range splitSentences(text) {
		sentTokens := m.Size(sentence)

		if sentTokens > maxSize {
			flush()
			current, currentTokens = nil, 0
			pieces = append(pieces, m.splitByTokenWindow(sentence, maxSize, overlap)...)
			continue
		}

		if currentTokens+sentTokens > maxSize && len(current) > 0 {
			flush()
			current, currentTokens = m.overlapSentences(current, overlap)
		}

		current = append(current, sentence)
		currentTokens += sentTokens
	}
	flush()

	return pieces, nil
}

// splitByTokenWindow cuts text at exact token boundaries. On tokenizer
// failure it degrades to the deterministic character-ratio window.
func (m *TokenMeasure) splitByTokenWindow(text string, maxSize, overlap int) []string {
	ids, err := m.tok.Encode(text)
	if err != nil {
		m.log.Warn("tokenizer encode failed, falling back to character split", "error", err)
		return splitByCharEstimate(text, maxSize, overlap)
	}
	if len(ids) <= maxSize {
		return []string{text}
	}

	var pieces []string
	start := 0
	for start < len(ids) {
		end := start + maxSize
		if end > len(ids) {
			end = len(ids)
		}
		piece, err := m.tok.Decode(ids[start:end])
		if err != nil {
			m.log.Warn("tokenizer decode failed, falling back to character split", "error", err)
			return splitByCharEstimate(text, maxSize, overlap)
		}
		if piece = strings.TrimSpace(piece); piece != "" {
			pieces = append(pieces, piece)
		}
		if end == len(ids) {
			break
		}
		start = end - overlap
	}
	return pieces
}

// overlapSentences walks trailing sentences backwards until the overlap
// budget is filled. A sentence exactly filling the remaining budget is
// included.
func (m *TokenMeasure) overlapSentences(sentences []string, budget int) ([]string, int) {
	if budget <= 0 {
		return nil, 0
	}
	var tail []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		n := m.Size(sentences[i])
		if total+n > budget {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		total += n
	}
	return tail, total
}

// splitByCharEstimate is the last-resort window split using the fixed
// character-per-token ratio.
func splitByCharEstimate(text string, maxTokens, overlapTokens int) []string {
	maxChars := token.ApproxChars(maxTokens)
	overlapChars := token.ApproxChars(overlapTokens)
	if len(text) <= maxChars {
		return []string{text}
	}

	var pieces []string
	start := 0
	for start < len(text) {
		end := start + maxChars
		if end > len(text) {
			end = len(text)
		} else {
			end = alignRune(text, end)
		}
		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			pieces = append(pieces, piece)
		}
		if end == len(text) {
			break
		}
		next := alignRune(text, end-overlapChars)
		if next <= start {
			next = end
		}
		start = next
	}
	return pieces
}

// splitSentences does basic sentence splitting on terminal punctuation
// followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}

func checkSplitArgs(maxSize, overlap int) error {
	if maxSize <= 0 {
		return fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidConfig, maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return fmt.Errorf("%w: overlap %d must be in [0, max size %d)", ErrInvalidConfig, overlap, maxSize)
	}
	return nil
}

// alignRune moves a byte offset left until it lands on a rune boundary.
func alignRune(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
