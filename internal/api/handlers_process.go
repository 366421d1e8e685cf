package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/BrainDriveAI/document-processing-service/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if err := pipeline.ValidateUpload(filename, header.Size, s.cfg.MaxUploadBytes); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	docID := pipeline.Slugify(r.FormValue("document_id"))
	if docID == "" {
		docID = pipeline.ContentHashHex(data)[:16]
	}
	collectionID := pipeline.Slugify(r.FormValue("collection_id"))
	title := r.FormValue("title")

	strategy := strings.TrimSpace(r.FormValue("strategy"))
	if strategy == "" {
		strategy = s.cfg.DefaultStrategy
	}

	cfg := s.orchestrator.StrategyConfig(strategy)
	hasOverride := false
	if raw := r.FormValue("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}
		hasOverride = true
	}

	// Surface unknown-strategy and sizing errors before queueing.
	if _, err := chunking.NewStrategy(strategy, cfg, s.orchestrator.ChunkingDeps()); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.orchestrator.NewJob(filename, title, docID, collectionID, strategy, data)
	if hasOverride {
		job.SetConfig(cfg)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":      job.ID,
		"document_id": job.DocID,
		"status":      job.Status,
		"poll_url":    fmt.Sprintf("/api/v1/documents/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleJobChunks(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	chunks := job.Chunks()
	if chunks == nil {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("chunks not available, job is %s", snap.Status), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"chunks":     chunks,
		"statistics": job.Stats(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
