package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
)

// JobStatus represents the state of a document processing job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusChunking  JobStatus = "chunking"
	StatusIndexing  JobStatus = "indexing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of a single document through parse, chunk, index.
type Job struct {
	mu sync.Mutex

	ID           string `json:"job_id"`
	DocID        string `json:"document_id"`
	CollectionID string `json:"collection_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Strategy string    `json:"strategy"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	chunks      []chunking.Chunk
	stats       chunking.Statistics
	errors      []string
	cfgOverride *chunking.Config
}

// Progress tracks processing progress.
type Progress struct {
	TotalChunks   int      `json:"total_chunks"`
	ChunksIndexed int      `json:"chunks_indexed"`
	Dropped       int      `json:"dropped_elements"`
	Warnings      []string `json:"warnings,omitempty"`
	Errors        []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetParsed records the parse-phase output. A caller-provided title wins
// over the parsed one; the effective title is returned.
func (j *Job) SetParsed(parsedTitle, contentHash string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Title == "" {
		j.Title = parsedTitle
	}
	j.ContentHash = contentHash
	j.UpdatedAt = time.Now()
	return j.Title
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddWarnings records non-fatal findings from chunking.
func (j *Job) AddWarnings(ws []string) {
	if len(ws) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Warnings = append(j.Progress.Warnings, ws...)
	j.UpdatedAt = time.Now()
}

// AddChunksIndexed atomically bumps the indexed-chunk counter.
func (j *Job) AddChunksIndexed(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksIndexed += n
	j.UpdatedAt = time.Now()
}

// SetChunkResult records the chunking output on the job.
func (j *Job) SetChunkResult(res *chunking.Result, stats chunking.Statistics) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.chunks = res.Chunks
	j.stats = stats
	j.Progress.TotalChunks = len(res.Chunks)
	j.Progress.Dropped = res.DroppedElements
	j.UpdatedAt = time.Now()
}

// Chunks returns the produced chunks, nil until chunking finished.
func (j *Job) Chunks() []chunking.Chunk {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.chunks
}

// Stats returns the chunk statistics for the finished run.
func (j *Job) Stats() chunking.Statistics {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetConfig pins an explicit sizing config for this job. Without one the
// worker applies service defaults for the job's strategy.
func (j *Job) SetConfig(cfg chunking.Config) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cfgOverride = &cfg
}

// Config returns the pinned sizing config, if any.
func (j *Job) Config() (chunking.Config, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cfgOverride == nil {
		return chunking.Config{}, false
	}
	return *j.cfgOverride, true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	DocID        string    `json:"document_id"`
	CollectionID string    `json:"collection_id"`
	Status       JobStatus `json:"status"`
	Phase        string    `json:"phase"`
	Filename     string    `json:"filename"`
	Title        string    `json:"title"`
	Strategy     string    `json:"strategy"`
	Progress     Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:           j.ID,
		DocID:        j.DocID,
		CollectionID: j.CollectionID,
		Status:       j.Status,
		Phase:        j.Phase,
		Filename:     j.Filename,
		Title:        j.Title,
		Strategy:     j.Strategy,
		Progress: Progress{
			TotalChunks:   j.Progress.TotalChunks,
			ChunksIndexed: j.Progress.ChunksIndexed,
			Dropped:       j.Progress.Dropped,
			Warnings:      j.Progress.Warnings,
			Errors:        errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
