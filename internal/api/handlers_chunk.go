package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/BrainDriveAI/document-processing-service/internal/pipeline"
)

// chunkRequest is the body of the synchronous chunking endpoint. Content is
// supplied as plain text, pre-typed elements, or sections plus tables.
type chunkRequest struct {
	DocumentID   string          `json:"document_id"`
	CollectionID string          `json:"collection_id,omitempty"`
	DocumentType string          `json:"document_type,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	Strategy     string          `json:"strategy,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`

	chunking.Input
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Elements) == 0 && len(req.Sections) == 0 && len(req.Tables) == 0 {
		if err := pipeline.ValidateText(req.Text, s.cfg.MaxUploadBytes); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	strategy := strings.TrimSpace(req.Strategy)
	if strategy == "" {
		strategy = s.cfg.DefaultStrategy
	}
	// Overrides decode over the service defaults, so callers set only the
	// knobs they care about.
	cfg := s.orchestrator.StrategyConfig(strategy)
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	st, err := chunking.NewStrategy(strategy, cfg, s.orchestrator.ChunkingDeps())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	docID := pipeline.Slugify(req.DocumentID)
	if docID == "" {
		docID = pipeline.ContentHashHex([]byte(req.Input.FlatText()))[:16]
	}
	doc := chunking.Document{
		ID:           docID,
		CollectionID: pipeline.Slugify(req.CollectionID),
		Type:         req.DocumentType,
		Metadata:     req.Metadata,
	}

	res, err := st.Chunk(r.Context(), doc, req.Input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chunking.ErrBadInput) || errors.Is(err, chunking.ErrEmptyInput) {
			status = http.StatusUnprocessableEntity
		}
		jsonError(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id":      docID,
		"strategy":         st.Name(),
		"chunks":           res.Chunks,
		"statistics":       chunking.ComputeStatistics(res.Chunks, cfg),
		"dropped_elements": res.DroppedElements,
		"warnings":         res.Warnings,
	})
}
