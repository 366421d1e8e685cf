package chunking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Recursive delegates splitting to langchaingo's recursive character
// splitter, which tries progressively finer separators until pieces fit.
// Useful as a comparison point against the structure-aware strategies.
type Recursive struct {
	cfg      Config
	splitter textsplitter.RecursiveCharacter
	log      *slog.Logger
}

func newRecursive(cfg Config, deps Deps) (*Recursive, error) {
	if cfg.FixedSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d",
			ErrInvalidConfig, cfg.FixedSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.FixedSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)",
			ErrInvalidConfig, cfg.Overlap, cfg.FixedSize)
	}
	sp := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.FixedSize),
		textsplitter.WithChunkOverlap(cfg.Overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
	)
	return &Recursive{cfg: cfg, splitter: sp, log: deps.logger()}, nil
}

func (r *Recursive) Name() string { return StrategyRecursive }

func (r *Recursive) Chunk(ctx context.Context, doc Document, in Input) (*Result, error) {
	text := strings.TrimSpace(in.FlatText())
	if text == "" {
		return nil, fmt.Errorf("%w: no text to chunk", ErrBadInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pieces, err := r.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("recursive split: %w", err)
	}

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		content := strings.TrimSpace(piece)
		if content == "" {
			continue
		}
		if r.cfg.MinChunkSize > 0 && len(content) < r.cfg.MinChunkSize {
			continue
		}
		md := Metadata{
			Strategy:  StrategyRecursive,
			SizeUnit:  "characters",
			SizeCount: len(content),
			WordCount: len(strings.Fields(content)),
			Overlap:   r.cfg.Overlap,
		}
		chunks = append(chunks, newChunk(doc, content, len(chunks), ChunkRecursive, md))
	}

	r.log.Debug("chunked document",
		"strategy", r.Name(),
		"document_id", doc.ID,
		"chunks", len(chunks),
	)
	return &Result{Chunks: chunks}, nil
}
