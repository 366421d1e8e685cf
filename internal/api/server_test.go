package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/BrainDriveAI/document-processing-service/internal/config"
	"github.com/BrainDriveAI/document-processing-service/internal/pipeline"
)

func testConfig() config.Config {
	return config.Config{
		Port:   "0",
		APIKey: "secret-key",

		WorkerCount:        2,
		MaxQueueSize:       10,
		MaxConcurrentIndex: 2,
		IndexBatchSize:     10,
		MaxUploadBytes:     1 << 20,

		DefaultStrategy:    chunking.StrategyHierarchical,
		SmallChunkTokens:   160,
		LargeChunkTokens:   448,
		ChunkOverlapTokens: 40,
		SmallChunkChars:    600,
		LargeChunkChars:    2000,
		ChunkOverlapChars:  75,
		FixedChunkSize:     512,
		FixedChunkOverlap:  50,
		MinChunkSize:       10,
		MaxEmbeddingTokens: 480,

		JobTTL: time.Hour,
	}
}

func testServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nil, chunking.Deps{Log: log}, log)
	return NewServer(orch, log, cfg)
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := testServer(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	srv := testServer(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_WrongKey(t *testing.T) {
	srv := testServer(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ValidKey(t *testing.T) {
	srv := testServer(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = ""
	cfg.DisableAuth = true
	srv := testServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", rec.Code)
	}
}

func TestJobStatus_NotFound(t *testing.T) {
	srv := testServer(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/jobs/nope", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteDocument_IndexStoreNotConfigured(t *testing.T) {
	srv := testServer(t, testConfig())
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/doc-1", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without index store, got %d", rec.Code)
	}
}

func postChunk(t *testing.T, srv *Server, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chunk", bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer secret-key")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestChunk_SynchronousText(t *testing.T) {
	srv := testServer(t, testConfig())
	rec := postChunk(t, srv, map[string]any{
		"document_id":   "doc-1",
		"collection_id": "col-1",
		"strategy":      "hierarchical",
		"text":          "First paragraph with enough words to survive filtering.\n\nSecond paragraph, also long enough to keep.",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		DocumentID string           `json:"document_id"`
		Strategy   string           `json:"strategy"`
		Chunks     []chunking.Chunk `json:"chunks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DocumentID != "doc-1" {
		t.Errorf("expected document_id doc-1, got %q", resp.DocumentID)
	}
	if resp.Strategy != "hierarchical" {
		t.Errorf("expected strategy hierarchical, got %q", resp.Strategy)
	}
	if len(resp.Chunks) == 0 {
		t.Fatal("expected chunks in response")
	}
	for _, c := range resp.Chunks {
		if c.DocumentID != "doc-1" {
			t.Errorf("chunk %s: expected document id doc-1, got %q", c.ID, c.DocumentID)
		}
	}
}

func TestChunk_ElementsInput(t *testing.T) {
	srv := testServer(t, testConfig())
	rec := postChunk(t, srv, map[string]any{
		"document_id": "doc-2",
		"strategy":    "hierarchical",
		"elements": []map[string]any{
			{"text": "Project Overview", "type": "heading", "level": 1},
			{"text": "Body paragraph that is comfortably above the minimum size.", "type": "paragraph"},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Chunks []chunking.Chunk `json:"chunks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Chunks) == 0 {
		t.Fatal("expected chunks from elements input")
	}
	if !resp.Chunks[0].Metadata.HasHeadings {
		t.Error("expected heading element to surface in metadata")
	}
}

func TestChunk_UnknownStrategy(t *testing.T) {
	srv := testServer(t, testConfig())
	rec := postChunk(t, srv, map[string]any{
		"strategy": "telepathic",
		"text":     "Some text to chunk.",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown strategy, got %d", rec.Code)
	}
}

func TestChunk_InvalidConfig(t *testing.T) {
	srv := testServer(t, testConfig())
	rec := postChunk(t, srv, map[string]any{
		"strategy": "hierarchical",
		"text":     "Some text to chunk.",
		"config": map[string]any{
			"small_chunk_size": 200,
			"large_chunk_size": 100,
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid sizing, got %d", rec.Code)
	}
}

func TestChunk_BlankText(t *testing.T) {
	srv := testServer(t, testConfig())
	rec := postChunk(t, srv, map[string]any{
		"text": "   ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, field, filename string, data []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range extra {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestProcess_AcceptsUpload(t *testing.T) {
	srv := testServer(t, testConfig())
	body, ctype := multipartUpload(t, "file", "notes.txt",
		[]byte("A paragraph of text that will be chunked later."),
		map[string]string{"collection_id": "My Collection"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", body)
	req.Header.Set("Authorization", "Bearer secret-key")
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID      string `json:"job_id"`
		DocumentID string `json:"document_id"`
		Status     string `json:"status"`
		PollURL    string `json:"poll_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("expected a job id")
	}
	if resp.Status != string(pipeline.StatusQueued) {
		t.Errorf("expected queued status, got %q", resp.Status)
	}
	if !strings.HasSuffix(resp.PollURL, resp.JobID) {
		t.Errorf("poll url %q does not reference job %q", resp.PollURL, resp.JobID)
	}

	// The queued job is visible through the status endpoint.
	statusReq := httptest.NewRequest(http.MethodGet, resp.PollURL, nil)
	statusReq.Header.Set("Authorization", "Bearer secret-key")
	statusRec := httptest.NewRecorder()
	srv.ServeHTTP(statusRec, statusReq)
	if statusRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from status endpoint, got %d", statusRec.Code)
	}
}

func TestProcess_UnsupportedExtension(t *testing.T) {
	srv := testServer(t, testConfig())
	body, ctype := multipartUpload(t, "file", "archive.zip", []byte("binary"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", body)
	req.Header.Set("Authorization", "Bearer secret-key")
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported type, got %d", rec.Code)
	}
}

func TestProcess_MissingFile(t *testing.T) {
	srv := testServer(t, testConfig())
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("collection_id", "c")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", &buf)
	req.Header.Set("Authorization", "Bearer secret-key")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file, got %d", rec.Code)
	}
}

func TestJobChunks_ConflictBeforeChunking(t *testing.T) {
	cfg := testConfig()
	srv := testServer(t, cfg)

	job := srv.orchestrator.NewJob("doc.txt", "", "", "", "hierarchical", []byte("text"))
	if err := srv.orchestrator.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/jobs/"+job.ID+"/chunks", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 before chunking finished, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"dir/nested.txt", "nested.txt"},
		{"", "unnamed"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
