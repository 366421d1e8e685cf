package chunking

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestChunkJSON_FirstSiblingIndexKept(t *testing.T) {
	md := Metadata{
		Strategy:       string(StrategyHierarchical),
		SizeUnit:       "characters",
		SizeCount:      42,
		SubChunkIndex:  0,
		TotalSubChunks: 3,
	}
	c := newChunk(Document{ID: "doc-1"}, "first sibling", 0, ChunkSmall, md)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// The first sibling of a split parent carries index zero; readers rely
	// on the field being present to order siblings.
	if !strings.Contains(string(data), `"sub_chunk_index":0`) {
		t.Errorf("sub_chunk_index missing from %s", data)
	}
	if !strings.Contains(string(data), `"total_sub_chunks":3`) {
		t.Errorf("total_sub_chunks missing from %s", data)
	}
}

func TestChunkJSON_RoundTripsMetadata(t *testing.T) {
	md := Metadata{
		Strategy:        string(StrategyHierarchical),
		SizeUnit:        "characters",
		SizeCount:       10,
		HeadingsContext: []string{"Intro"},
		HasHeadings:     true,
		SubChunkIndex:   2,
		TotalSubChunks:  4,
	}
	c := newChunk(Document{ID: "doc-1", CollectionID: "col-1"}, "text", 5, ChunkSmall, md)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Chunk
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Metadata.SubChunkIndex != 2 || got.Metadata.TotalSubChunks != 4 {
		t.Errorf("sub-chunk position = %d/%d, want 2/4",
			got.Metadata.SubChunkIndex, got.Metadata.TotalSubChunks)
	}
	if got.Metadata.CollectionID != "col-1" {
		t.Errorf("collection = %q, want col-1", got.Metadata.CollectionID)
	}
}
