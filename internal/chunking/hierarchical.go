package chunking

import (
	"context"
	"fmt"
	"log/slog"
)

// minPartialFragment is the smallest useful slice the overlap tail will
// carve out of an element it cannot include whole.
const minPartialFragment = 50

// Hierarchical packs elements into character-sized parent chunks and
// re-splits each parent into retrieval-sized children. Parents preserve
// reading context; children are what gets embedded.
type Hierarchical struct {
	cfg Config
	asm *assembler
	ext *Extractor
	log *slog.Logger
}

func newHierarchical(cfg Config, deps Deps) (*Hierarchical, error) {
	if err := validateHierarchy(cfg); err != nil {
		return nil, err
	}
	log := deps.logger()
	measure := CharMeasure{}
	return &Hierarchical{
		cfg: cfg,
		asm: &assembler{
			cfg: assemblerConfig{
				Strategy:       StrategyHierarchical,
				LargeTarget:    cfg.LargeTarget,
				SmallTarget:    cfg.SmallTarget,
				Overlap:        cfg.Overlap,
				MinSmall:       cfg.MinChunkSize,
				MinFragment:    minPartialFragment,
				Separator:      "\n\n",
				PartialOverlap: true,
			},
			measure: measure,
			log:     log,
		},
		ext: NewExtractor(measure, cfg.MinChunkSize, log),
		log: log,
	}, nil
}

func (h *Hierarchical) Name() string { return h.asm.cfg.Strategy }

func (h *Hierarchical) Chunk(ctx context.Context, doc Document, in Input) (*Result, error) {
	elements, dropped, err := h.ext.Extract(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	large := h.asm.largeChunks(doc, elements)
	small, err := h.asm.smallChunks(doc, large)
	if err != nil {
		return nil, err
	}

	h.log.Debug("chunked document",
		"strategy", h.Name(),
		"document_id", doc.ID,
		"large_chunks", len(large),
		"small_chunks", len(small),
		"dropped_elements", dropped,
	)
	return &Result{
		Chunks:          append(large, small...),
		DroppedElements: dropped,
	}, nil
}

// validateHierarchy rejects sizing that cannot produce a useful hierarchy.
func validateHierarchy(cfg Config) error {
	if cfg.SmallTarget <= 0 || cfg.LargeTarget <= 0 {
		return fmt.Errorf("%w: chunk sizes must be positive (small=%d, large=%d)",
			ErrInvalidConfig, cfg.SmallTarget, cfg.LargeTarget)
	}
	if cfg.SmallTarget >= cfg.LargeTarget {
		return fmt.Errorf("%w: small chunk size %d must be below large chunk size %d",
			ErrInvalidConfig, cfg.SmallTarget, cfg.LargeTarget)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.SmallTarget {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)",
			ErrInvalidConfig, cfg.Overlap, cfg.SmallTarget)
	}
	return nil
}
