package chunking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// FixedSize slides a character window over the flattened document text,
// nudging each cut back to the nearest boundary inside the tail of the
// window. It ignores document structure entirely; the cheap baseline.
type FixedSize struct {
	cfg Config
	log *slog.Logger
}

func newFixedSize(cfg Config, deps Deps) (*FixedSize, error) {
	if cfg.FixedSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d",
			ErrInvalidConfig, cfg.FixedSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.FixedSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)",
			ErrInvalidConfig, cfg.Overlap, cfg.FixedSize)
	}
	return &FixedSize{cfg: cfg, log: deps.logger()}, nil
}

func (f *FixedSize) Name() string { return StrategyFixedSize }

func (f *FixedSize) Chunk(ctx context.Context, doc Document, in Input) (*Result, error) {
	text := strings.TrimSpace(in.FlatText())
	if text == "" {
		return nil, fmt.Errorf("%w: no text to chunk", ErrBadInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	measure := CharMeasure{}
	pieces, err := measure.SplitBySize(text, f.cfg.FixedSize, f.cfg.Overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(pieces))
	for _, content := range pieces {
		if f.cfg.MinChunkSize > 0 && len(content) < f.cfg.MinChunkSize {
			continue
		}
		md := Metadata{
			Strategy:  StrategyFixedSize,
			SizeUnit:  measure.Unit(),
			SizeCount: len(content),
			WordCount: len(strings.Fields(content)),
			Overlap:   f.cfg.Overlap,
		}
		chunks = append(chunks, newChunk(doc, content, len(chunks), ChunkFixed, md))
	}

	f.log.Debug("chunked document",
		"strategy", f.Name(),
		"document_id", doc.ID,
		"chunks", len(chunks),
	)
	return &Result{Chunks: chunks}, nil
}
