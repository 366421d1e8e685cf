package chunking

import (
	"context"
	"strings"
	"testing"
)

func TestComputeStatistics_Empty(t *testing.T) {
	st := ComputeStatistics(nil, Config{})
	if st.TotalChunks != 0 || st.Sizes.Count != 0 {
		t.Fatalf("statistics over no chunks = %+v", st)
	}
}

func TestComputeStatistics_Distribution(t *testing.T) {
	chunks := []Chunk{
		{Type: ChunkLarge, Metadata: Metadata{Strategy: StrategyHierarchical, SizeUnit: "characters", SizeCount: 100}},
		{Type: ChunkSmall, Metadata: Metadata{SizeCount: 40}},
		{Type: ChunkSmall, Metadata: Metadata{SizeCount: 60}},
	}
	st := ComputeStatistics(chunks, Config{MaxEmbedding: 80, MinChunkSize: 50})

	if st.TotalChunks != 3 {
		t.Errorf("total = %d, want 3", st.TotalChunks)
	}
	if st.ByType[ChunkLarge] != 1 || st.ByType[ChunkSmall] != 2 {
		t.Errorf("by type = %v", st.ByType)
	}
	if st.Sizes.Min != 40 || st.Sizes.Max != 100 {
		t.Errorf("sizes = %+v", st.Sizes)
	}
	if st.Sizes.Median != 60 {
		t.Errorf("median = %v, want 60", st.Sizes.Median)
	}
	if d := st.SizesByType[ChunkSmall]; d.Count != 2 || d.Mean != 50 {
		t.Errorf("small sizes = %+v", d)
	}
	if d := st.SizesByType[ChunkLarge]; d.Count != 1 || d.Min != 100 || d.Max != 100 {
		t.Errorf("large sizes = %+v", d)
	}
	if st.Strategy != StrategyHierarchical {
		t.Errorf("strategy = %q", st.Strategy)
	}
	if st.OverEmbeddingLimit != 1 {
		t.Errorf("over embedding limit = %d, want 1", st.OverEmbeddingLimit)
	}
	if st.BelowMinimum != 1 {
		t.Errorf("below minimum = %d, want 1", st.BelowMinimum)
	}
}

func TestComputeStatistics_FromRealRun(t *testing.T) {
	cfg := Config{SmallTarget: 30, LargeTarget: 90, Overlap: 0, MinChunkSize: 0}
	s, err := NewStrategy(StrategyHierarchical, cfg, Deps{})
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	text := strings.Repeat("One more sentence of body text here.\n\n", 6)
	res, err := s.Chunk(context.Background(), testDocument(), Input{Text: text})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	st := ComputeStatistics(res.Chunks, cfg)
	if st.TotalChunks != len(res.Chunks) {
		t.Errorf("total = %d, want %d", st.TotalChunks, len(res.Chunks))
	}
	if st.ByType[ChunkLarge] == 0 || st.ByType[ChunkSmall] == 0 {
		t.Errorf("by type = %v, want both large and small present", st.ByType)
	}
	if st.SizeUnit != "characters" {
		t.Errorf("size unit = %q", st.SizeUnit)
	}
	large := st.SizesByType[ChunkLarge]
	small := st.SizesByType[ChunkSmall]
	if large.Count != st.ByType[ChunkLarge] || small.Count != st.ByType[ChunkSmall] {
		t.Errorf("per-type distribution counts %d/%d disagree with type counts %v",
			large.Count, small.Count, st.ByType)
	}
	if large.Max > 90 {
		t.Errorf("large chunk max %d exceeds target 90", large.Max)
	}
}
