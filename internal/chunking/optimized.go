package chunking

import (
	"context"
	"fmt"
	"log/slog"
)

// OptimizedHierarchical is the token-budgeted variant of the hierarchical
// strategy, tuned for embedding models with hard token limits. Headings are
// re-emphasized and tables tagged in the rendered parents so the surrounding
// structure survives into the embedded text.
type OptimizedHierarchical struct {
	cfg      Config
	asm      *assembler
	ext      *Extractor
	warnings []string
	log      *slog.Logger
}

func newOptimized(cfg Config, deps Deps) (*OptimizedHierarchical, error) {
	if err := validateHierarchy(cfg); err != nil {
		return nil, err
	}
	log := deps.logger()

	var warnings []string
	if cfg.MaxEmbedding > 0 && cfg.LargeTarget > cfg.MaxEmbedding {
		w := fmt.Sprintf("large chunk size %d tokens exceeds embedding limit %d; parents may be truncated by the embedder",
			cfg.LargeTarget, cfg.MaxEmbedding)
		warnings = append(warnings, w)
		log.Warn("large chunk size exceeds embedding limit",
			"large_chunk_size", cfg.LargeTarget,
			"max_embedding_tokens", cfg.MaxEmbedding,
		)
	}

	measure := NewTokenMeasure(deps.Tokenizer, log)
	return &OptimizedHierarchical{
		cfg: cfg,
		asm: &assembler{
			cfg: assemblerConfig{
				Strategy:        StrategyOptimized,
				LargeTarget:     cfg.LargeTarget,
				SmallTarget:     cfg.SmallTarget,
				Overlap:         cfg.Overlap,
				MinSmall:        cfg.MinChunkSize,
				Separator:       "\n",
				RenderStructure: true,
			},
			measure: measure,
			log:     log,
		},
		ext:      NewExtractor(measure, cfg.MinChunkSize, log),
		warnings: warnings,
		log:      log,
	}, nil
}

func (o *OptimizedHierarchical) Name() string { return StrategyOptimized }

// Warnings reports non-fatal configuration findings from construction.
func (o *OptimizedHierarchical) Warnings() []string { return o.warnings }

func (o *OptimizedHierarchical) Chunk(ctx context.Context, doc Document, in Input) (*Result, error) {
	elements, dropped, err := o.ext.Extract(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	large := o.asm.largeChunks(doc, elements)
	small, err := o.asm.smallChunks(doc, large)
	if err != nil {
		return nil, err
	}

	o.log.Debug("chunked document",
		"strategy", o.Name(),
		"document_id", doc.ID,
		"large_chunks", len(large),
		"small_chunks", len(small),
		"dropped_elements", dropped,
	)
	return &Result{
		Chunks:          append(large, small...),
		DroppedElements: dropped,
		Warnings:        o.warnings,
	}, nil
}
