package chunking

import "context"

// Semantic is a reserved name currently backed by the hierarchical strategy.
// A true embedding-similarity splitter can replace the inner strategy
// without touching callers.
type Semantic struct {
	inner *Hierarchical
}

func newSemantic(cfg Config, deps Deps) (*Semantic, error) {
	inner, err := newHierarchical(cfg, deps)
	if err != nil {
		return nil, err
	}
	inner.asm.cfg.Strategy = StrategySemantic
	return &Semantic{inner: inner}, nil
}

func (s *Semantic) Name() string { return StrategySemantic }

func (s *Semantic) Chunk(ctx context.Context, doc Document, in Input) (*Result, error) {
	return s.inner.Chunk(ctx, doc, in)
}
