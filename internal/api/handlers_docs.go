package api

import (
	"encoding/json"
	"net/http"

	"github.com/BrainDriveAI/document-processing-service/internal/indexstore"
	"github.com/go-chi/chi/v5"
)

// handleDeleteDocument removes a document's chunks from the index store.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	store := s.orchestrator.IndexStore()
	if !store.Enabled() {
		jsonError(w, "index store is not configured", http.StatusServiceUnavailable)
		return
	}

	docID := chi.URLParam(r, "docID")
	if err := store.DeleteDocument(r.Context(), docID); err != nil {
		status := http.StatusInternalServerError
		if indexstore.IsTransient(err) {
			status = http.StatusBadGateway
		}
		jsonError(w, "failed to delete document: "+err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"deleted":     true,
	})
}
