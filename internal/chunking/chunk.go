package chunking

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ChunkType distinguishes parent, child, and flat chunks.
type ChunkType string

const (
	ChunkLarge     ChunkType = "large"
	ChunkSmall     ChunkType = "small"
	ChunkFixed     ChunkType = "fixed"
	ChunkRecursive ChunkType = "recursive"
)

// Document identifies the owner of one chunking run. The engine copies its
// fields into every chunk; it never mutates the document.
type Document struct {
	ID           string         `json:"id"`
	CollectionID string         `json:"collection_id,omitempty"`
	Type         string         `json:"type,omitempty"` // source format: pdf, docx, txt...
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Metadata is the provenance record attached to every chunk: well-known
// fields plus one open extension map for document-level and custom fields.
type Metadata struct {
	Strategy        string         `json:"chunking_strategy"`
	SizeUnit        string         `json:"size_unit"`
	SizeCount       int            `json:"size_count"`
	ElementTypes    []ElementKind  `json:"element_types,omitempty"`
	PageNumbers     []int          `json:"page_numbers,omitempty"`
	HeadingsContext []string       `json:"headings_context,omitempty"`
	HasHeadings     bool           `json:"has_headings"`
	HasLists        bool           `json:"has_lists"`
	HasTables       bool           `json:"has_tables"`
	ElementCount    int            `json:"element_count,omitempty"`
	WordCount       int            `json:"word_count,omitempty"`
	Overlap         int            `json:"overlap,omitempty"`
	SubChunkIndex   int            `json:"sub_chunk_index"`
	TotalSubChunks  int            `json:"total_sub_chunks"`
	DocumentType    string         `json:"document_type,omitempty"`
	CollectionID    string         `json:"collection_id,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

func (m Metadata) clone() Metadata {
	out := m
	out.ElementTypes = slices.Clone(m.ElementTypes)
	out.PageNumbers = slices.Clone(m.PageNumbers)
	out.HeadingsContext = slices.Clone(m.HeadingsContext)
	if m.Extra != nil {
		out.Extra = maps.Clone(m.Extra)
	}
	return out
}

// Chunk is a bounded slice of document text plus provenance metadata, the
// unit indexed for retrieval. Small chunks reference their parent large
// chunk through ParentChunkID.
type Chunk struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	CollectionID  string    `json:"collection_id,omitempty"`
	Content       string    `json:"content"`
	Index         int       `json:"index"`
	Type          ChunkType `json:"chunk_type"`
	ParentChunkID string    `json:"parent_chunk_id,omitempty"`
	Metadata      Metadata  `json:"metadata"`
	CreatedAt     time.Time `json:"created_at"`
}

// newChunk stamps identity and merges document-level metadata into the
// chunk's extension map.
func newChunk(doc Document, content string, index int, ctype ChunkType, md Metadata) Chunk {
	md.DocumentType = doc.Type
	md.CollectionID = doc.CollectionID
	if len(doc.Metadata) > 0 {
		if md.Extra == nil {
			md.Extra = make(map[string]any, len(doc.Metadata))
		}
		maps.Copy(md.Extra, doc.Metadata)
	}
	return Chunk{
		ID:           uuid.NewString(),
		DocumentID:   doc.ID,
		CollectionID: doc.CollectionID,
		Content:      content,
		Index:        index,
		Type:         ctype,
		Metadata:     md,
		CreatedAt:    time.Now().UTC(),
	}
}
